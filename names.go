package errctx

// WithContextName returns the name of the extended type generated for the error enum typeName. It is the reserved name
// of the context-carrying variant: a variant or other declaration using it makes generation fail.
func WithContextName(typeName string) string {
	return typeName + "WithContext"
}

// DefinitionName returns the name of the generated *Definition variable of the error enum typeName.
func DefinitionName(typeName string) string {
	return typeName + "Context"
}

// ReservedNames returns all identifiers declared by generated code for the error enum typeName.
func ReservedNames(typeName string) []string {
	return []string{WithContextName(typeName), DefinitionName(typeName)}
}
