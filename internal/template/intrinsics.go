package template

// Ref builds a CloudFormation Ref intrinsic pointing at the named parameter
// or resource.
func Ref(name string) map[string]any {
	return map[string]any{"Ref": name}
}

// GetAtt builds a CloudFormation Fn::GetAtt intrinsic reading an attribute of
// the named resource. Nested stack outputs are read as "Outputs.<name>".
func GetAtt(logicalName, attribute string) map[string]any {
	return map[string]any{"Fn::GetAtt": []any{logicalName, attribute}}
}

// Join builds a CloudFormation Fn::Join intrinsic concatenating values with
// the given delimiter.
func Join(delimiter string, values ...any) map[string]any {
	return map[string]any{"Fn::Join": []any{delimiter, values}}
}

// FindInMap builds a CloudFormation Fn::FindInMap intrinsic resolving a value
// from a mapping declared on the template.
func FindInMap(mapName string, topLevelKey, secondLevelKey any) map[string]any {
	return map[string]any{"Fn::FindInMap": []any{mapName, topLevelKey, secondLevelKey}}
}
