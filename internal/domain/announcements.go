package domain

// Ticket is the subset of a support ticket the notification fan-out needs
type Ticket struct {
	ID          int64  `json:"id" validate:"required,gt=0"`
	OwnerUserID string `json:"owner_user_id" validate:"required"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Status      string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

// HuntedSighting reports a hunted character coming online
type HuntedSighting struct {
	CharacterName string `json:"character_name" validate:"required,max=64"`
	World         string `json:"world" validate:"required,max=64"`
}

// SystemAlert is a guild-wide announcement
type SystemAlert struct {
	Title   string `json:"title" validate:"required,max=120"`
	Message string `json:"message" validate:"required,max=1000"`
}
