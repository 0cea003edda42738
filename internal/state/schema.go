package state

import "database/sql"

// Document keys. The names are inherited from the first release and
// kept stable so existing stores keep working.
const (
	keyPlaylists      = "musicPlayerMultiplePlaylists"
	keyLegacyPlaylist = "musicPlayerPlaylist"
	keyActivePlaylist = "musicPlayerLastActivePlaylist"
	keyShuffle        = "musicPlayerShuffleState"
	keyRepeatMode     = "musicPlayerRepeatMode"
	keyEqSettings     = "musicPlayerEqSettings"
	keyVolume         = "musicPlayerVolumeSettings"
	keyRecentlyPlayed = "musicPlayerRecentlyPlayed"
	keyMostPlayed     = "musicPlayerMostPlayed"
)

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
	`)
	return err
}
