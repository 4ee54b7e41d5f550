package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/KylerCondran/4PlayerChess/internal/adapter/fourchesspresenter"
	"github.com/KylerCondran/4PlayerChess/internal/fourchessclient"
	"github.com/KylerCondran/4PlayerChess/pkg/fourchessdto"
)

// fourchess-check plays the opening pawn push against a running server and prints the board.
func main() {
	baseURL := os.Getenv("FOURCHESS_BASE_URL")
	wsURL := os.Getenv("FOURCHESS_WS_URL")
	layoutName := os.Getenv("FOURCHESS_LAYOUT")
	keep := os.Getenv("FOURCHESS_KEEP") != ""

	if baseURL == "" {
		log.Fatal("FOURCHESS_BASE_URL is required")
	}

	client := fourchessclient.NewClient(baseURL, fourchessclient.WithTimeout(8*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.Health(ctx); err != nil {
		log.Fatalf("/healthz error: %v", err)
	}
	ls, err := client.Layouts(ctx)
	if err != nil {
		log.Fatalf("/layouts error: %v", err)
	}
	log.Printf("/layouts ok: default=%s available=%s", ls.Default, strings.Join(ls.Layouts, ","))

	st, err := client.Create(ctx, layoutName)
	if err != nil {
		log.Fatalf("create error: %v", err)
	}
	log.Printf("created game %s (layout %s)", st.ID, st.Layout)
	if !keep {
		defer func() {
			if err := client.Delete(context.Background(), st.ID); err != nil {
				log.Printf("delete error: %v", err)
			}
		}()
	}

	var feed *fourchessclient.Feed
	if wsURL != "" {
		feed = fourchessclient.NewFeed(wsURL, st.ID, 3)
		feed.OnStateChange(func(s fourchessclient.FeedState) {
			log.Printf("WS state: %s", s)
		})
		feed.OnEvent(func(ev *fourchessdto.Event) {
			fmt.Println(fourchesspresenter.FormatEvent(*ev))
		})
		if err := feed.Connect(ctx); err != nil {
			log.Printf("WS connect error: %v", err)
			feed = nil
		}
	} else {
		log.Println("FOURCHESS_WS_URL not set; skipping feed check")
	}

	dests, err := client.Legal(ctx, st.ID, "m7")
	if err != nil {
		log.Fatalf("legal error: %v", err)
	}
	log.Printf("m7 can reach %s", strings.Join(dests, " "))

	var waitTurn func(context.Context) (*fourchessdto.Event, error)
	if feed != nil {
		waitTurn = feed.Expect(fourchessdto.EventTurn)
	}
	res, err := client.Move(ctx, st.ID, "m7", "k7")
	if err != nil {
		log.Fatalf("move error (%s): %v", fourchessclient.Code(err), err)
	}
	fmt.Println(fourchesspresenter.FormatBoard(res.State))

	if waitTurn != nil {
		if _, err := waitTurn(ctx); err != nil {
			log.Printf("WS turn event not seen: %v", err)
		}
		_ = feed.Close(context.Background())
	}
}
