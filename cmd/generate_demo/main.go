// Command generate_demo creates a demo library with public domain books.
// Usage: go run cmd/generate_demo/main.go [-dir path/to/demo]
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/akhmetov/librarian/internal/database"
	"github.com/akhmetov/librarian/internal/database/bookmarks"
	"github.com/akhmetov/librarian/internal/database/books"
	"github.com/akhmetov/librarian/internal/database/history"
	"github.com/akhmetov/librarian/internal/database/stats"
	"github.com/akhmetov/librarian/internal/entities"
	"github.com/akhmetov/librarian/internal/textstore"
)

const defaultDemoDir = "./demo"

func main() {
	demoDir := flag.String("dir", defaultDemoDir, "directory for the demo library")
	flag.Parse()

	log.Printf("Generating demo library at %s...", *demoDir)

	dbPath := filepath.Join(*demoDir, "librarian.db")
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing demo database: %v", err)
	}
	if err := os.MkdirAll(*demoDir, 0o755); err != nil {
		log.Fatalf("Failed to create demo directory: %v", err)
	}

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	texts, err := textstore.NewStore(filepath.Join(*demoDir, "texts"))
	if err != nil {
		log.Fatalf("Failed to create text store: %v", err)
	}

	booksRepo := books.NewRepository(db.DB)
	bookmarksRepo := bookmarks.NewRepository(db.DB)

	for _, demo := range demoBooks() {
		book := &entities.Book{
			ID:              uuid.New(),
			Title:           demo.title,
			Author:          demo.author,
			ProgressPercent: demo.progress,
			IsFavorite:      demo.favorite,
		}

		ref, err := texts.Save(book.ID, demo.sections)
		if err != nil {
			log.Printf("Failed to store text for %s: %v", demo.title, err)
			continue
		}
		book.TextRef = ref

		if err := booksRepo.Create(book); err != nil {
			log.Printf("Failed to save book %s: %v", demo.title, err)
			continue
		}
		if demo.progress > 0 {
			if err := booksRepo.UpdateProgress(book.ID, demo.progress); err != nil {
				log.Printf("Failed to set progress for %s: %v", demo.title, err)
			}
		}
		for _, bm := range demo.bookmarks {
			bm.BookID = book.ID
			if err := bookmarksRepo.Create(&bm); err != nil {
				log.Printf("Failed to save bookmark for %s: %v", demo.title, err)
			}
		}
		log.Printf("Saved: %s by %s (%d sections)", demo.title, demo.author, len(demo.sections))
	}

	seedHistory(db)
	seedStats(db)

	log.Println("Demo library generated successfully!")
}

type demoBook struct {
	title     string
	author    string
	sections  []string
	progress  int
	favorite  bool
	bookmarks []entities.Bookmark
}

func demoBooks() []demoBook {
	return []demoBook{
		{
			title:    "Meditations",
			author:   "Marcus Aurelius",
			favorite: true,
			progress: 34,
			sections: []string{
				"You have power over your mind - not outside events. Realize this, and you will find strength.\n" +
					"The happiness of your life depends upon the quality of your thoughts.",
				"Waste no more time arguing about what a good man should be. Be one.",
				"Very little is needed to make a happy life; it is all within yourself, in your way of thinking.",
			},
			bookmarks: []entities.Bookmark{
				{Title: "on strength", Position: 12.5},
			},
		},
		{
			title:    "The Art of War",
			author:   "Sun Tzu",
			progress: 100,
			sections: []string{
				"The supreme art of war is to subdue the enemy without fighting.",
				"Appear weak when you are strong, and strong when you are weak.",
				"In the midst of chaos, there is also opportunity.",
			},
		},
		{
			title:  "Walden",
			author: "Henry David Thoreau",
			sections: []string{
				"I went to the woods because I wished to live deliberately, to front only the essential facts of life.",
				"The mass of men lead lives of quiet desperation.",
				"Rather than love, than money, than fame, give me truth.",
			},
		},
	}
}

func seedHistory(db *database.Database) {
	repo := history.NewRepository(db.DB)
	for _, query := range []string{"marcus aurelius", "война и мир", "thoreau"} {
		if err := repo.Record(query); err != nil {
			log.Printf("Failed to record search %q: %v", query, err)
		}
	}
}

func seedStats(db *database.Database) {
	repo := stats.NewRepository(db.DB)
	now := time.Now()
	for days, seconds := range map[int]int{0: 1800, 1: 2400, 3: 600} {
		if err := repo.AddSeconds(now.AddDate(0, 0, -days), seconds); err != nil {
			log.Printf("Failed to record reading time: %v", err)
		}
	}
}
