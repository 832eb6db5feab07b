package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/goblin987/legendary-meme/cmd"
	"github.com/goblin987/legendary-meme/config"
	"github.com/goblin987/legendary-meme/services"
)

func main() {
	config.LoadEnv()

	var (
		server    bool
		port      int
		check     bool
		importURL string
		name      string
	)

	flag.BoolVar(&server, "server", false, "Start in web server mode")
	flag.IntVar(&port, "port", 8080, "Port for web server mode")
	flag.BoolVar(&check, "check", false, "Print the music folder report and exit")
	flag.StringVar(&importURL, "import", "", "URL of a track to import into the music folder")
	flag.StringVar(&name, "name", "", "Display name for the imported track")
	flag.Parse()

	// Server mode takes precedence
	if server {
		cmd.StartWebServer(port)
		return
	}

	if check {
		runCheck()
		return
	}

	if importURL != "" {
		if name == "" {
			log.Fatalf("You must provide -name together with -import")
		}
		runImport(importURL, name)
		return
	}

	flag.Usage()
}

// runCheck prints the library report for the configured music folder
func runCheck() {
	library := services.NewLibraryService(services.NewEncodingService())
	report, err := library.Report(config.GetMusicDir())
	if err != nil {
		log.Fatalf("Error: %s", err)
	}

	fmt.Printf("Music folder: %s\n\n", report.MusicDir)
	for _, required := range report.Required {
		mark := "ok"
		if !required.Present {
			mark = "MISSING"
		}
		fmt.Printf("  %-24s %s\n", required.Filename, mark)
	}

	if len(report.Violations) > 0 {
		fmt.Println("\nNaming violations:")
		for _, v := range report.Violations {
			fmt.Printf("  %s: %s (expected %s)\n", v.Filename, v.Reason, v.Expected)
		}
	}

	if len(report.Encoding) > 0 {
		fmt.Println("\nEncoding advisories:")
		for _, a := range report.Encoding {
			for _, issue := range a.Issues {
				fmt.Printf("  %s: %s\n", a.Filename, issue)
			}
		}
	}

	if report.Missing == 0 && len(report.Violations) == 0 && len(report.Encoding) == 0 {
		fmt.Println("\nAll good.")
	}
}

// runImport downloads a single track with a console progress bar
func runImport(url, name string) {
	filename := services.NormalizeFilename(name)
	target := filepath.Join(config.GetMusicDir(), filename)

	var bar *progressbar.ProgressBar
	onProgress := func(received, total int64) {
		if bar == nil {
			bar = progressbar.DefaultBytes(total, "importing "+filename)
		}
		bar.Set64(received)
	}

	client := &http.Client{Timeout: 10 * time.Minute}
	if err := services.FetchTrack(client, url, target, onProgress); err != nil {
		log.Fatalf("Cannot import track %s: %s", name, err)
	}

	fmt.Printf("\nImported %s -> %s\n", name, target)
}
