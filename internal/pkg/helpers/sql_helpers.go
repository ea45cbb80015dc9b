package helpers

import "github.com/jackc/pgx/v5/pgtype"

// NullText maps an optional string column. The empty string is stored as NULL.
func NullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
