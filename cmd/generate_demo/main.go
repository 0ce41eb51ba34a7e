// Command generate_demo creates a demo database with users, songs, albums,
// comments and likes. Every engagement goes through the same repositories the
// API uses, so the counters in the result are consistent by construction.
// Usage: go run ./cmd/generate_demo [-db path/to/demo.db] [-media-url http://host/media]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/soundwave/internal/auth"
	"github.com/mrlokans/soundwave/internal/database"
	"github.com/mrlokans/soundwave/internal/database/albums"
	"github.com/mrlokans/soundwave/internal/database/comments"
	"github.com/mrlokans/soundwave/internal/database/likes"
	"github.com/mrlokans/soundwave/internal/database/songs"
	"github.com/mrlokans/soundwave/internal/database/users"
	"github.com/mrlokans/soundwave/internal/entities"
)

const (
	defaultDemoDatabasePath = "./demo/demo.db"
	demoPassword            = "demo-password"
)

type demoSong struct {
	Artist  string
	Name    string
	Creator string
	Album   string
	Listens int
	LikedBy []string
	Thread  []demoComment
}

type demoComment struct {
	Author  string
	Text    string
	LikedBy []string
	Replies []demoComment
}

type seeder struct {
	ctx      context.Context
	mediaURL string

	users    *users.Repository
	songs    *songs.Repository
	albums   *albums.Repository
	comments *comments.Repository
	likes    *likes.Repository

	userIDs  map[string]uint
	albumIDs map[string]uint
}

func main() {
	dbPath := flag.String("db", defaultDemoDatabasePath, "path to the demo database file")
	mediaURL := flag.String("media-url", "http://localhost:4000/media", "base URL placed in front of demo media names")
	flag.Parse()

	log.Printf("Generating demo database at %s...", *dbPath)

	// Delete existing demo database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath, database.DefaultOptions())
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	s := &seeder{
		ctx:      context.Background(),
		mediaURL: strings.TrimRight(*mediaURL, "/"),
		users:    users.NewRepository(db.DB),
		songs:    songs.NewRepository(db),
		albums:   albums.NewRepository(db),
		comments: comments.NewRepository(db),
		likes:    likes.NewRepository(db),
		userIDs:  make(map[string]uint),
		albumIDs: make(map[string]uint),
	}

	s.createUsers([]string{"nina", "omar", "priya", "lukas", "sofia"})
	s.createAlbums(map[string]string{
		"Night Drives": "nina",
		"Field Notes":  "omar",
	})
	for _, song := range demoCatalog() {
		s.createSong(song)
	}

	log.Println("Demo database generated successfully!")
}

func (s *seeder) createUsers(names []string) {
	hash, err := auth.HashPassword(demoPassword, bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}
	for _, name := range names {
		user, err := s.users.CreateUser(name, hash)
		if err != nil {
			log.Fatalf("Failed to create user %s: %v", name, err)
		}
		s.userIDs[name] = user.ID
	}
	log.Printf("Created %d users (password %q)", len(names), demoPassword)
}

func (s *seeder) createAlbums(albumOwners map[string]string) {
	for name, owner := range albumOwners {
		album, err := s.albums.CreateAlbum(s.ctx, s.userIDs[owner], name, s.media("albums", name, ".png"))
		if err != nil {
			log.Fatalf("Failed to create album %s: %v", name, err)
		}
		s.albumIDs[name] = album.ID
	}
}

func (s *seeder) createSong(cfg demoSong) {
	song, err := s.songs.CreateSong(s.ctx, songs.CreateSongInput{
		Artist:    cfg.Artist,
		Name:      cfg.Name,
		ImageURL:  s.media("songs/images", cfg.Name, ".png"),
		AudioURL:  s.media("songs/audio", cfg.Name, ".mp3"),
		CreatorID: s.userIDs[cfg.Creator],
	})
	if err != nil {
		log.Printf("Failed to create song %s: %v", cfg.Name, err)
		return
	}

	if cfg.Album != "" {
		if err := s.albums.AddSongToAlbum(s.ctx, song.ID, s.albumIDs[cfg.Album]); err != nil {
			log.Printf("Failed to add %s to %s: %v", cfg.Name, cfg.Album, err)
		}
	}
	for i := 0; i < cfg.Listens; i++ {
		if err := s.songs.IncrementListens(s.ctx, song.ID); err != nil {
			log.Printf("Failed to record listen for %s: %v", cfg.Name, err)
			break
		}
	}
	for _, name := range cfg.LikedBy {
		if err := s.likes.LikeSong(s.ctx, song.ID, s.userIDs[name]); err != nil {
			log.Printf("Failed to like %s as %s: %v", cfg.Name, name, err)
		}
	}

	for _, thread := range cfg.Thread {
		comment, err := s.comments.CreateComment(s.ctx, song.ID, s.userIDs[thread.Author], thread.Text)
		if err != nil {
			log.Printf("Failed to comment on %s: %v", cfg.Name, err)
			continue
		}
		s.likeComment(comment, thread.LikedBy)

		for _, reply := range thread.Replies {
			sub, err := s.comments.CreateSubComment(s.ctx, comment.ID, s.userIDs[reply.Author], reply.Text)
			if err != nil {
				log.Printf("Failed to reply on %s: %v", cfg.Name, err)
				continue
			}
			s.likeComment(sub, reply.LikedBy)
		}
	}

	log.Printf("Saved: %s by %s (%d likes, %d threads)", cfg.Name, cfg.Artist, len(cfg.LikedBy), len(cfg.Thread))
}

func (s *seeder) likeComment(comment *entities.Comment, likedBy []string) {
	for _, name := range likedBy {
		if err := s.likes.LikeComment(s.ctx, comment.ID, s.userIDs[name]); err != nil {
			log.Printf("Failed to like comment %d as %s: %v", comment.ID, name, err)
		}
	}
}

func (s *seeder) media(prefix, name, ext string) string {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	return s.mediaURL + "/" + prefix + "/" + slug + ext
}

func demoCatalog() []demoSong {
	return []demoSong{
		{
			Artist:  "Nina Vale",
			Name:    "Sodium Lights",
			Creator: "nina",
			Album:   "Night Drives",
			Listens: 42,
			LikedBy: []string{"omar", "priya", "lukas"},
			Thread: []demoComment{
				{
					Author:  "omar",
					Text:    "That synth line in the second verse is unreal.",
					LikedBy: []string{"nina", "sofia"},
					Replies: []demoComment{
						{Author: "nina", Text: "Thanks! It was a happy accident.", LikedBy: []string{"omar"}},
						{Author: "priya", Text: "Agreed, on repeat all week."},
					},
				},
				{Author: "lukas", Text: "Perfect for late drives."},
			},
		},
		{
			Artist:  "Nina Vale",
			Name:    "Overpass",
			Creator: "nina",
			Album:   "Night Drives",
			Listens: 17,
			LikedBy: []string{"sofia"},
		},
		{
			Artist:  "Omar Reyes",
			Name:    "Birdsong at Five",
			Creator: "omar",
			Album:   "Field Notes",
			Listens: 28,
			LikedBy: []string{"nina", "priya"},
			Thread: []demoComment{
				{
					Author: "sofia",
					Text:   "Where were these recorded?",
					Replies: []demoComment{
						{Author: "omar", Text: "A marsh just outside the city, before sunrise."},
					},
				},
			},
		},
		{
			Artist:  "Priya Das",
			Name:    "Paper Boats",
			Creator: "priya",
			Listens: 9,
			LikedBy: []string{"omar", "lukas", "sofia", "nina"},
			Thread: []demoComment{
				{Author: "nina", Text: "Beautiful arrangement.", LikedBy: []string{"priya", "omar"}},
			},
		},
	}
}
