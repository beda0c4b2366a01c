package chat

// UnknownUserName is shown when a profile cannot be resolved.
const UnknownUserName = "Unknown User"

// Profile is the public identity of a user as reported by the user service.
type Profile struct {
	ID    string
	Name  string
	Email string
}

// UnknownProfile is the placeholder used when lookup fails.
func UnknownProfile(id string) Profile {
	return Profile{ID: id, Name: UnknownUserName}
}
