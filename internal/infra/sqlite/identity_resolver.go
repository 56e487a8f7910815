package sqlite

import (
	"context"
	"database/sql"
)

// IdentityResolver maps WhatsApp LIDs to phone numbers using the
// whatsmeow_lid_map table that whatsmeow keeps in the same database file.
type IdentityResolver struct {
	db *sql.DB
}

func NewIdentityResolver(db *sql.DB) *IdentityResolver {
	return &IdentityResolver{db: db}
}

// ResolveLIDToPhone returns lid unchanged when no mapping is known, including
// before whatsmeow has created its table.
func (r *IdentityResolver) ResolveLIDToPhone(ctx context.Context, lid string) string {
	var pn sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT pn FROM whatsmeow_lid_map WHERE lid = ?`, lid).Scan(&pn)
	if err != nil || !pn.Valid || pn.String == "" {
		return lid
	}
	return pn.String
}
