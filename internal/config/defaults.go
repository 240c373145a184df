package config

// BaseSchema returns the shape every environment configuration must satisfy
// before any extension fragments are merged in.
func BaseSchema() Schema {
	return Schema{
		"global": Schema{
			"environment_name": "str",
			"output":           "str",
			"print_debug":      "bool",
		},
		"template": Schema{
			"description":         "str",
			"ec2_key_default":     "str",
			"timeout_in_minutes":  "int",
			"s3_template_prefix":  "str",
			"template_bucket":     "str",
			"template_upload_acl": "str",
		},
		"network": Schema{
			"az_count":     "int",
			"subnet_types": "list",
		},
	}
}

// FactoryDefaults returns the configuration written to disk when no config
// file exists. The tree satisfies BaseSchema.
func FactoryDefaults() Config {
	return Config{
		"global": map[string]any{
			"environment_name": "envstack",
			"output":           "environment.template",
			"print_debug":      false,
		},
		"template": map[string]any{
			"description":         "Environment built with envstack",
			"ec2_key_default":     "default-key",
			"timeout_in_minutes":  60,
			"s3_template_prefix":  "templates",
			"template_bucket":     "",
			"template_upload_acl": "bucket-owner-full-control",
		},
		"network": map[string]any{
			"az_count":     2,
			"subnet_types": []any{"public", "private"},
		},
	}
}
