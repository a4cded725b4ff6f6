package upload

import (
	"fmt"
	"os"
	"strings"

	"github.com/DjordjeVuckovic/alumni-memories/internal/imaging"
	"github.com/DjordjeVuckovic/alumni-memories/internal/validate"
	"github.com/gabriel-vasile/mimetype"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxFiles    = 10
	DefaultMaxFileSize = 10 << 20
	DefaultFolder      = "memories"
)

var DefaultAllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"video/mp4",
	"video/quicktime",
}

type Compression struct {
	Enabled   bool `yaml:"enabled" json:"enabled"`
	MaxWidth  int  `yaml:"maxWidth" json:"maxWidth" validate:"gte=0,lte=16384"`
	MaxHeight int  `yaml:"maxHeight" json:"maxHeight" validate:"gte=0,lte=16384"`
	Quality   int  `yaml:"quality" json:"quality" validate:"gte=1,lte=100"`
}

// Options bound one UploadFiles call.
type Options struct {
	Folder       string      `yaml:"folder" json:"folder" validate:"required,max=200"`
	MaxFiles     int         `yaml:"maxFiles" json:"maxFiles" validate:"gte=1,lte=100"`
	MaxFileSize  int64       `yaml:"maxFileSize" json:"maxFileSize" validate:"gte=1"`
	AllowedTypes []string    `yaml:"allowedTypes" json:"allowedTypes" validate:"min=1,dive,required"`
	Compression  Compression `yaml:"compression" json:"compression"`
}

func DefaultOptions() Options {
	return Options{
		Folder:       DefaultFolder,
		MaxFiles:     DefaultMaxFiles,
		MaxFileSize:  DefaultMaxFileSize,
		AllowedTypes: append([]string(nil), DefaultAllowedTypes...),
		Compression: Compression{
			Enabled:   true,
			MaxWidth:  imaging.DefaultMaxWidth,
			MaxHeight: imaging.DefaultMaxHeight,
			Quality:   imaging.DefaultQuality,
		},
	}
}

// WithFolder returns a copy of o targeting folder; blank keeps the current one.
func (o Options) WithFolder(folder string) Options {
	if f := strings.Trim(strings.TrimSpace(folder), "/"); f != "" {
		o.Folder = f
	}
	return o
}

func (o Options) Validate() error {
	return validate.Struct("invalid upload options", o)
}

// match returns the allowlisted type m satisfies. Parents are tried too, so a
// subtype such as animated PNG passes as image/png.
func (o Options) match(m *mimetype.MIME) (string, bool) {
	for cur := m; cur != nil; cur = cur.Parent() {
		for _, t := range o.AllowedTypes {
			if cur.Is(t) {
				return strings.ToLower(strings.TrimSpace(t)), true
			}
		}
	}
	return "", false
}

// LoadOptions reads YAML options from path. Keys absent from the file keep
// their defaults. An empty path returns the defaults.
func LoadOptions(path string) (Options, error) {
	if path == "" {
		return DefaultOptions(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("read upload config: %w", err)
	}
	return ParseOptions(data)
}

func ParseOptions(data []byte) (Options, error) {
	o := DefaultOptions()
	if err := yaml.Unmarshal(data, &o); err != nil {
		return Options{}, fmt.Errorf("parse upload config YAML: %w", err)
	}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// LoadEnv reads options from the YAML file named by UPLOAD_CONFIG, if set.
func LoadEnv() (Options, error) {
	return LoadOptions(os.Getenv("UPLOAD_CONFIG"))
}
