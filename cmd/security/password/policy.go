package password

// Validate checks a candidate password against the configured length policy.
// Lengths are measured in bytes, matching how the hash consumes the input.
func (c Config) Validate(password string) error {
	if len(password) < c.Policy.MinLength {
		return ErrPasswordTooShort
	}
	if c.Policy.MaxLength > 0 && len(password) > c.Policy.MaxLength {
		return ErrPasswordTooLong
	}
	return nil
}
