// Package errkind is the closed set of failure kinds returned by the tabreg pipeline. Every
// operation wraps exactly one of the sentinels below so a caller can recover the kind with Of
// or match it with errors.Is.
package errkind

import "errors"

// Kind classifies a pipeline failure
type Kind uint8

const (
	Unknown Kind = iota
	FileNotFound
	UnsupportedFormat
	CorruptOrEmpty
	UnreadableFile
	NoTablesFound
	EmptySelection
	UnknownColumn
	MissingValues
	NonNumericColumn
	MissingConstant
	ArityMismatch
	NonNumericInput
	WriteError
	ReadError
	InsufficientRows
	LoadInProgress
	NoModel
	NoTable
	InvalidOptions
	FitFailed
	LoadCancelled

	lastKind = LoadCancelled
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrCorruptOrEmpty    = errors.New("file is corrupt or contains no rows")
	ErrUnreadableFile    = errors.New("file is not a valid container for its format")
	ErrNoTablesFound     = errors.New("database contains no tables")
	ErrEmptySelection    = errors.New("input and target columns must be selected")
	ErrUnknownColumn     = errors.New("column does not exist in table")
	ErrMissingValues     = errors.New("selected columns contain missing values")
	ErrNonNumericColumn  = errors.New("selected column is not numeric")
	ErrMissingConstant   = errors.New("no constant value supplied")
	ErrArityMismatch     = errors.New("number of values does not match number of input columns")
	ErrNonNumericInput   = errors.New("input value is not a number")
	ErrWriteError        = errors.New("unable to write model archive")
	ErrReadError         = errors.New("unable to read model archive")
	ErrInsufficientRows  = errors.New("not enough rows to split into training and test partitions")
	ErrLoadInProgress    = errors.New("a load is already in progress")
	ErrNoModel           = errors.New("no fitted model")
	ErrNoTable           = errors.New("no table loaded")
	ErrInvalidOptions    = errors.New("invalid options")
	ErrFitFailed         = errors.New("model could not be fit to the data")
	ErrLoadCancelled     = errors.New("load was cancelled")
)

var sentinels = map[Kind]error{
	FileNotFound:      ErrFileNotFound,
	UnsupportedFormat: ErrUnsupportedFormat,
	CorruptOrEmpty:    ErrCorruptOrEmpty,
	UnreadableFile:    ErrUnreadableFile,
	NoTablesFound:     ErrNoTablesFound,
	EmptySelection:    ErrEmptySelection,
	UnknownColumn:     ErrUnknownColumn,
	MissingValues:     ErrMissingValues,
	NonNumericColumn:  ErrNonNumericColumn,
	MissingConstant:   ErrMissingConstant,
	ArityMismatch:     ErrArityMismatch,
	NonNumericInput:   ErrNonNumericInput,
	WriteError:        ErrWriteError,
	ReadError:         ErrReadError,
	InsufficientRows:  ErrInsufficientRows,
	LoadInProgress:    ErrLoadInProgress,
	NoModel:           ErrNoModel,
	NoTable:           ErrNoTable,
	InvalidOptions:    ErrInvalidOptions,
	FitFailed:         ErrFitFailed,
	LoadCancelled:     ErrLoadCancelled,
}

func (k Kind) String() string {
	switch k {
	case FileNotFound:
		return "FileNotFound"
	case UnsupportedFormat:
		return "UnsupportedFormat"
	case CorruptOrEmpty:
		return "CorruptOrEmpty"
	case UnreadableFile:
		return "UnreadableFile"
	case NoTablesFound:
		return "NoTablesFound"
	case EmptySelection:
		return "EmptySelection"
	case UnknownColumn:
		return "UnknownColumn"
	case MissingValues:
		return "MissingValues"
	case NonNumericColumn:
		return "NonNumericColumn"
	case MissingConstant:
		return "MissingConstant"
	case ArityMismatch:
		return "ArityMismatch"
	case NonNumericInput:
		return "NonNumericInput"
	case WriteError:
		return "WriteError"
	case ReadError:
		return "ReadError"
	case InsufficientRows:
		return "InsufficientRows"
	case LoadInProgress:
		return "LoadInProgress"
	case NoModel:
		return "NoModel"
	case NoTable:
		return "NoTable"
	case InvalidOptions:
		return "InvalidOptions"
	case FitFailed:
		return "FitFailed"
	case LoadCancelled:
		return "LoadCancelled"
	default:
		return "Unknown"
	}
}

// Err returns the sentinel error for the kind, or nil for Unknown
func (k Kind) Err() error {
	return sentinels[k]
}

// Of walks the wrap chain of err and returns the kind of the first sentinel it finds. A nil
// error or one outside the taxonomy returns Unknown.
func Of(err error) Kind {
	if err == nil {
		return Unknown
	}
	for k := FileNotFound; k <= lastKind; k++ {
		if errors.Is(err, sentinels[k]) {
			return k
		}
	}
	return Unknown
}
