// Package migration holds the embedded SQLite schema.
package migration

// Create contains the full schema. All statements are idempotent so the
// store can run it unconditionally on open.
const Create = `
CREATE TABLE IF NOT EXISTS User (
  name TEXT PRIMARY KEY,
  refresh_token TEXT,
  last_updated DATETIME
);

CREATE TABLE IF NOT EXISTS Track (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  artist TEXT NOT NULL,
  genre TEXT,
  popularity INTEGER DEFAULT 0,
  duration_ms INTEGER DEFAULT 0,
  danceability REAL,
  energy REAL,
  valence REAL,
  tempo REAL,
  acousticness REAL,
  has_features INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS Listen (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user TEXT NOT NULL,
  track TEXT NOT NULL,
  played_at INTEGER NOT NULL,
  first_listened INTEGER DEFAULT 0,
  FOREIGN KEY (user) REFERENCES User(name),
  FOREIGN KEY (track) REFERENCES Track(id)
);

CREATE UNIQUE INDEX IF NOT EXISTS ListenUnique ON Listen (user, track, played_at);

CREATE TABLE IF NOT EXISTS TrackSimilarity (
  track TEXT NOT NULL,
  related TEXT NOT NULL,
  score REAL DEFAULT 0,
  PRIMARY KEY (track, related),
  FOREIGN KEY (track) REFERENCES Track(id),
  FOREIGN KEY (related) REFERENCES Track(id)
);

CREATE TABLE IF NOT EXISTS WeeklyReport (
  user TEXT NOT NULL,
  week_ending INTEGER NOT NULL,
  report TEXT NOT NULL,
  created INTEGER NOT NULL,
  PRIMARY KEY (user, week_ending),
  FOREIGN KEY (user) REFERENCES User(name)
);
`
