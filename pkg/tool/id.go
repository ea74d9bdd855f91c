package tool

import "github.com/google/uuid"

// GenerateUUIDV7 returns a time-ordered UUID for primary keys.
func GenerateUUIDV7() string {
	return uuid.Must(uuid.NewV7()).String()
}

// IsUUID reports whether s parses as a UUID. Used to validate entity id
// parameters once at the boundary instead of ad hoc in every handler.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
