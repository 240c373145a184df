package template

// DefaultEC2KeyName is the fallback key pair name when none is configured.
const DefaultEC2KeyName = "default-key"

// EC2KeyParameter declares the SSH key pair parameter shared by the root
// template and every child template.
func EC2KeyParameter(defaultKey string) Parameter {
	if defaultKey == "" {
		defaultKey = DefaultEC2KeyName
	}
	return Parameter{
		Type:                  "String",
		Default:               defaultKey,
		Description:           "Name of an existing EC2 KeyPair to enable SSH access to the instances",
		AllowedPattern:        `[\x20-\x7E]*`,
		MinLength:             1,
		MaxLength:             255,
		ConstraintDescription: "can contain only ASCII characters.",
	}
}

// RemoteAccessParameter declares the CIDR block allowed to ingress into
// public access points of the environment.
func RemoteAccessParameter() Parameter {
	return Parameter{
		Type:                  "String",
		Default:               "0.0.0.0/0",
		Description:           "CIDR block identifying the network address space that will be allowed to ingress into public access points within this solution",
		AllowedPattern:        `(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})/(\d{1,2})`,
		MinLength:             9,
		MaxLength:             18,
		ConstraintDescription: "must be a valid IP CIDR range of the form x.x.x.x/x.",
	}
}
