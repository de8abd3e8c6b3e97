package config

import (
	"fmt"

	"github.com/aouyang1/go-tabreg/archive"
	"gopkg.in/yaml.v3"
)

// Compression is an archive codec that can be unmarshalled from its name.
type Compression archive.CompressionType

// Type returns the archive compression type.
func (c Compression) Type() archive.CompressionType {
	return archive.CompressionType(c)
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Compression.
func (c *Compression) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!str", "!!null":
		ct, err := archive.ParseCompression(value.Value)
		if err != nil {
			return err
		}
		*c = Compression(ct)
	case "!!bool":
		var b bool
		if err := value.Decode(&b); err != nil {
			return err
		}
		if b {
			*c = Compression(archive.CompressionZstd)
		} else {
			*c = Compression(archive.CompressionNone)
		}
	default:
		return fmt.Errorf("cannot unmarshal %s into Compression", value.Tag)
	}
	return nil
}

// MarshalYAML implements the yaml.Marshaler interface for Compression.
func (c Compression) MarshalYAML() (interface{}, error) {
	return c.Type().String(), nil
}
