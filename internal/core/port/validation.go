package port

type Validator interface {
	// ValidateStruct returns nil or a domain validation error with a readable message.
	ValidateStruct(s interface{}) error
}
