package api

type loginInput struct {
	Identifier string `json:"identifier" form:"identifier"`
	Password   string `json:"password" form:"password"`
}

type registerInput struct {
	Name      string `json:"name" form:"name"`
	Email     string `json:"email" form:"email"`
	School    string `json:"school" form:"school"`
	Role      string `json:"role" form:"role"`
	Username  string `json:"username" form:"username"`
	StartDate string `json:"start_date" form:"start_date"`
}

type changePasswordInput struct {
	CurrentPassword string `json:"current_password" form:"current_password"`
	NewPassword     string `json:"new_password" form:"new_password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

type accountDecisionInput struct {
	Decision string `json:"decision" form:"decision"`
	Username string `json:"username" form:"username"`
}

// leadAssignmentInput clears the assignment when LeadInternID is null or zero.
type leadAssignmentInput struct {
	LeadInternID *uint `json:"lead_intern_id" form:"lead_intern_id"`
}

type reviewDecisionInput struct {
	Decision string `json:"decision" form:"decision"`
	Comment  string `json:"comment" form:"comment"`
}

type planStatusInput struct {
	Status string `json:"status" form:"status"`
}

type celebratedInput struct {
	Celebrated bool `json:"celebrated" form:"celebrated"`
}
