// Command storetool inspects or seeds a voicecrate database without
// going through Telegram. Useful for recovering an installation or for
// preloading a collection.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/eliseohh/voicecratebot/internal/store"
)

func main() {
	var (
		dbPath = flag.String("db", "./voicecrate.db", "path to the sqlite database")
		list   = flag.Bool("list", false, "print all records in browse order")
		add    = flag.Bool("add", false, "append a record")
		file   = flag.String("file", "", "telegram file_id (with -add)")
		kind   = flag.String("kind", "voice", "voice or audio (with -add)")
		name   = flag.String("name", "", "display name (with -add)")
		author = flag.String("author", "", "author (with -add)")
	)
	flag.Parse()

	db, err := store.NewDB(*dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := db.InitSchema(); err != nil {
		log.Fatalf("schema: %v", err)
	}

	st := store.Open(db)

	switch {
	case *list:
		recs := st.Records()
		if len(recs) == 0 {
			fmt.Println("(empty)")
			return
		}
		for i, r := range recs {
			fmt.Printf("%3d. [%s] %s (file_id=%s owner=%d)\n", i+1, r.Kind, r.Title(), r.FileID, r.OwnerID)
		}

	case *add:
		if *file == "" {
			log.Fatal("-add requires -file")
		}
		k := store.Kind(*kind)
		if k != store.KindVoice && k != store.KindAudio {
			log.Fatalf("unknown kind %q", *kind)
		}
		rec := store.Record{FileID: *file, Kind: k, Name: *name, Author: *author}
		if err := st.Append(rec); err != nil {
			log.Fatalf("append: %v", err)
		}
		fmt.Printf("appended at position %d\n", st.Len())

	default:
		flag.Usage()
	}
}
