package model

import "time"

// User is a persistent account stored in MongoDB
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"passwordHash"`
	Stats        UserStats `json:"stats" bson:"stats"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// UserStats are the aggregate per-account counters
type UserStats struct {
	GamesPlayed    int `json:"gamesPlayed" bson:"gamesPlayed"`
	TotalScore     int `json:"totalScore" bson:"totalScore"`
	Wins           int `json:"wins" bson:"wins"`
	TotalGuesses   int `json:"totalGuesses" bson:"totalGuesses"`
	CorrectGuesses int `json:"correctGuesses" bson:"correctGuesses"`
}

// StatsDelta is an increment applied to UserStats. Zero fields are skipped.
type StatsDelta struct {
	GamesPlayed    int
	TotalScore     int
	Wins           int
	TotalGuesses   int
	CorrectGuesses int
}
