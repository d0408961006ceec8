package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/tonearm/tonearm/config"
	"github.com/tonearm/tonearm/pkg/helpers"
)

type demoUser struct {
	username string
	email    string
}

type demoReview struct {
	username string
	albumID  string
	content  string
	rating   float64
}

type demoStatus struct {
	username string
	albumID  string
	status   string
	favorite bool
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	password := "password123"
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	users := []demoUser{
		{"ada", "ada@example.com"},
		{"ben", "ben@example.com"},
		{"cleo", "cleo@example.com"},
	}

	ids := make(map[string]int64, len(users))
	for _, u := range users {
		var id int64
		err := db.QueryRow(`
			INSERT INTO users (username, email, hashed_password, is_verified)
			VALUES ($1, $2, $3, TRUE)
			ON CONFLICT (LOWER(username)) DO UPDATE SET updated_at = now()
			RETURNING id
		`, u.username, u.email, hash).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.username, err)
		}
		ids[u.username] = id
		fmt.Printf("seeded user: id=%d username=%s password=%s\n", id, u.username, password)
	}

	follows := [][2]string{
		{"ada", "ben"},
		{"ben", "ada"},
		{"cleo", "ada"},
		{"cleo", "ben"},
	}
	for _, f := range follows {
		if _, err := db.Exec(`
			INSERT INTO follows (follower_id, following_id)
			VALUES ($1, $2)
			ON CONFLICT (follower_id, following_id) DO NOTHING
		`, ids[f[0]], ids[f[1]]); err != nil {
			log.Fatalf("failed to seed follow %s->%s: %v", f[0], f[1], err)
		}
	}
	fmt.Printf("seeded %d follow edges\n", len(follows))

	reviews := []demoReview{
		{"ada", "1weenld61qoidwYuZ1GESA", "Still the record I reach for after midnight.", 5.0},
		{"ada", "4LH4d3cOWNNsVw41Gqt2kv", "The transitions carry it as much as the songs.", 4.5},
		{"ben", "6dVIqQ8qmQ5GBnJ9shOYGE", "Paranoia never sounded this clean.", 4.5},
		{"cleo", "1weenld61qoidwYuZ1GESA", "Took me three listens to get it. Worth all three.", 4.0},
	}
	for _, rv := range reviews {
		if _, err := db.Exec(`
			INSERT INTO reviews (user_id, spotify_album_id, content, rating)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, spotify_album_id)
			DO UPDATE SET content = EXCLUDED.content, rating = EXCLUDED.rating, updated_at = now()
		`, ids[rv.username], rv.albumID, rv.content, rv.rating); err != nil {
			log.Fatalf("failed to seed review by %s: %v", rv.username, err)
		}
	}
	fmt.Printf("seeded %d reviews\n", len(reviews))

	statuses := []demoStatus{
		{"ada", "1weenld61qoidwYuZ1GESA", "favorite", true},
		{"ben", "6dVIqQ8qmQ5GBnJ9shOYGE", "listened", false},
		{"ben", "4LH4d3cOWNNsVw41Gqt2kv", "want-to-listen", false},
		{"cleo", "1weenld61qoidwYuZ1GESA", "listened", true},
	}
	for _, st := range statuses {
		if _, err := db.Exec(`
			INSERT INTO album_statuses (user_id, spotify_album_id, status, is_favorite)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, spotify_album_id)
			DO UPDATE SET status = EXCLUDED.status, is_favorite = EXCLUDED.is_favorite, updated_at = now()
		`, ids[st.username], st.albumID, st.status, st.favorite); err != nil {
			log.Fatalf("failed to seed status by %s: %v", st.username, err)
		}
	}
	fmt.Printf("seeded %d album statuses\n", len(statuses))
}
