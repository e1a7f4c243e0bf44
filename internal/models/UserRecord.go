package models

// UserRecord describes one tracked library owner. TotalGames and
// InstalledGames are recomputed on every ingestion.
type UserRecord struct {
	UserID         int    `json:"user_id"`
	Username       string `json:"username"`
	SourceFilename string `json:"db_filename"`
	SourceMtime    string `json:"db_mtime"`
	TotalGames     int    `json:"total_games"`
	InstalledGames int    `json:"installed_games"`
}

func (u *UserRecord) Clone() *UserRecord {
	c := *u
	return &c
}
