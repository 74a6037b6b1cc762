package handler

const (
	msgRegistered    = "User registered successfully"
	msgLoggedIn      = "Login successful"
	msgLoggedOut     = "Logged out successfully"
	msgUserRetrieved = "User retrieved successfully"
	msgEmailVerified = "Email verified successfully"
)
