package domain

// User is the account of the signed-in user as returned by /users/me.
type User struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone,omitempty"`
	ProfileImage string          `json:"profileImage,omitempty"`
	Role         string          `json:"role"` // "user", "admin" or "moderator"
	IsVerified   bool            `json:"isVerified"`
	LastLoginAt  string          `json:"lastLoginAt,omitempty"`
	Preferences  UserPreferences `json:"preferences"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

// UserPreferences are the per-user UI settings stored by the backend.
type UserPreferences struct {
	Language           string `json:"language,omitempty"`
	Theme              string `json:"theme,omitempty"`
	EmailNotifications bool   `json:"emailNotifications"`
	PushNotifications  bool   `json:"pushNotifications"`
}

// UserSummary is the abbreviated user embedded in events, invitations and posts.
type UserSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// UpdateProfileRequest is a partial update of the signed-in user.
type UpdateProfileRequest struct {
	Name         string           `json:"name,omitempty"`
	Phone        string           `json:"phone,omitempty"`
	ProfileImage string           `json:"profileImage,omitempty"`
	Preferences  *UserPreferences `json:"preferences,omitempty"`
}
