// Package validation checks configuration structs against their
// `validate` struct tags and reports failures as *errors.AppError.
//
//	type Config struct {
//	    PaddingSize int `mapstructure:"padding_size" validate:"gte=0"`
//	}
//	if err := validation.Validate(cfg); err != nil { ... }
//
// Field names in messages follow the mapstructure tag, so they match the
// keys in config.yml.
package validation
