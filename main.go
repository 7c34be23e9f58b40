package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quizreel/quizreel/config"
	serverconfig "github.com/quizreel/quizreel/internal/config"
	"github.com/quizreel/quizreel/internal/generate"
	"github.com/quizreel/quizreel/internal/job"
	"github.com/quizreel/quizreel/internal/metadata"
	"github.com/quizreel/quizreel/internal/profile"
	"github.com/quizreel/quizreel/internal/storage"
	transport "github.com/quizreel/quizreel/internal/transport/http"
	"github.com/quizreel/quizreel/pkg/quizvideo"
)

var (
	rootCmd = &cobra.Command{
		Use:   "quizreel",
		Short: "A quiz video composer for short-form vertical content",
		Long: `quizreel builds "guess the actor" quiz videos from a JSON manifest.
It resolves movie posters and actor portraits from OMDb and TMDB, composites
them into timed scenes over a background track, and renders a vertical MP4.

Examples:
  # Render a quiz video from a manifest
  quizreel render -m manifest.json -o quiz.mp4

  # Render and upload to the configured bucket
  quizreel render -m manifest.json -o quiz.mp4 --upload --delete-local

  # Run the HTTP API
  quizreel serve --config server.yaml`,
	}

	renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Render a quiz video from a manifest file",
		Long: fmt.Sprintf(`Render a quiz video from a JSON manifest.

Supported profiles:
%s
API keys are read from OMDB_API_KEY and TMDB_API_KEY (or a .env file);
keys embedded in the manifest take precedence. Upload credentials come from
B2_KEY_ID, B2_APP_KEY and B2_BUCKET_NAME.

Example:
  quizreel render -m manifest.json -o quiz.mp4 -p tiktok`,
			formatSupportedProfiles()),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifestPath, _ := cmd.Flags().GetString("manifest")
			outputPath, _ := cmd.Flags().GetString("output")
			profileName, _ := cmd.Flags().GetString("profile")
			verbose, _ := cmd.Flags().GetBool("verbose")
			upload, _ := cmd.Flags().GetBool("upload")
			remoteName, _ := cmd.Flags().GetString("remote-name")
			deleteLocal, _ := cmd.Flags().GetBool("delete-local")
			validateOnly, _ := cmd.Flags().GetBool("validate-only")

			if manifestPath == "" {
				return fmt.Errorf("manifest path is required")
			}

			if validateOnly {
				if err := quizvideo.Validate(manifestPath); err != nil {
					return err
				}
				fmt.Println("Manifest is valid")
				return nil
			}

			if outputPath == "" {
				return fmt.Errorf("output path is required")
			}

			opts := config.RenderOptions{
				ManifestPath: manifestPath,
				OutputPath:   outputPath,
				Profile:      profileName,
				Verbose:      verbose,
			}
			creds := quizvideo.Credentials{
				OMDBAPIKey: os.Getenv("OMDB_API_KEY"),
				TMDBAPIKey: os.Getenv("TMDB_API_KEY"),
			}

			var up *quizvideo.UploadConfig
			if upload {
				up = &quizvideo.UploadConfig{
					KeyID:       os.Getenv("B2_KEY_ID"),
					AppKey:      os.Getenv("B2_APP_KEY"),
					Bucket:      os.Getenv("B2_BUCKET_NAME"),
					Endpoint:    os.Getenv("B2_ENDPOINT"),
					Region:      os.Getenv("B2_REGION"),
					RemoteName:  remoteName,
					DeleteLocal: deleteLocal,
				}
			}

			result, err := quizvideo.Compose(cmd.Context(), opts, creds, up)
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				log.Println("Warning:", w)
			}
			fmt.Printf("Rendered %s (%.0fs)\n", result.OutputPath, result.Duration)
			if result.UploadURL != "" {
				fmt.Printf("Uploaded to %s\n", result.UploadURL)
			}
			if result.UploadError != "" {
				log.Println("Upload failed:", result.UploadError)
			}
			return nil
		},
	}

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate a quiz manifest from an actor's filmography",
		Long: `Generate a quiz manifest by ranking an actor's movies on TMDB.

The nine most recognizable movies become three hint groups of three, ordered
hardest to easiest, with the actor as the answer. The TMDB key is read from
TMDB_API_KEY (or a .env file).

Example:
  quizreel generate -a "Arnold Schwarzenegger" -o manifest.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			actorName, _ := cmd.Flags().GetString("actor")
			outputPath, _ := cmd.Flags().GetString("output")
			captions, _ := cmd.Flags().GetStringSlice("captions")
			verbose, _ := cmd.Flags().GetBool("verbose")

			key := os.Getenv("TMDB_API_KEY")
			if key == "" {
				return fmt.Errorf("TMDB_API_KEY is required to generate a manifest")
			}

			gen := generate.New(metadata.NewTMDBClient(key))
			out, err := gen.Manifest(cmd.Context(), actorName, captions)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(out.Manifest, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, append(data, '\n'), 0644); err != nil {
				return err
			}

			fmt.Printf("Found %d rankable movies for %s\n", out.TotalMoviesFound, out.ActorName)
			if verbose {
				for i, movie := range out.Movies {
					fmt.Printf("%2d. %s (%s) as %s, score %.1f\n", i+1, movie.Title, movie.ReleaseYear, movie.Character, movie.Score)
				}
			}
			fmt.Printf("Wrote %s\n", outputPath)
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the video composition HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			addrFlag, _ := cmd.Flags().GetString("addr")
			return runServer(cmd.Context(), configPath, addrFlag)
		},
	}
)

func runServer(ctx context.Context, configPath, addrFlag string) error {
	cfg, err := serverconfig.Load(configPath)
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.Addr = addrFlag
	}

	var uploader job.Uploader
	upload := config.UploadOptions{}
	if cfg.Upload.Enabled {
		client, err := storage.New(serverconfig.StorageFromEnv(cfg.Upload), cfg.Verbose)
		if err != nil {
			return err
		}
		uploader = client
		upload = config.UploadOptions{
			Enabled:     true,
			DeleteLocal: cfg.Upload.DeleteLocal,
		}
	}

	runner := job.NewRunner(cfg.Verbose, uploader)
	creds := serverconfig.CredentialsFromEnv()
	handler := transport.NewVideoHandler(runner, creds, cfg.Profile, cfg.OutputDir, upload)
	manifests := transport.NewManifestHandler(creds.TMDBAPIKey)

	server := &http.Server{
		Addr:        cfg.Addr,
		Handler:     transport.NewMux(handler, manifests),
		ReadTimeout: 30 * time.Second,
		// Rendering happens inside the request
		WriteTimeout: 10 * time.Minute,
	}

	go func() {
		log.Printf("starting quizreel API on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func formatSupportedProfiles() string {
	var sb strings.Builder
	for _, name := range profile.GetSupportedProfiles() {
		sb.WriteString(fmt.Sprintf("- %s\n", name))
	}
	return sb.String()
}

func init() {
	renderCmd.Flags().StringP("manifest", "m", "", "Manifest JSON file")
	renderCmd.Flags().StringP("output", "o", "", "Output video file")
	renderCmd.Flags().StringP("profile", "p", job.DefaultProfile,
		fmt.Sprintf("Output profile (%s)", strings.Join(profile.GetSupportedProfiles(), ", ")))
	renderCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	renderCmd.Flags().Bool("upload", false, "Upload the rendered video to the configured bucket")
	renderCmd.Flags().String("remote-name", "", "Object name for the upload (defaults to the output file name)")
	renderCmd.Flags().Bool("delete-local", false, "Delete the local file after a successful upload")
	renderCmd.Flags().Bool("validate-only", false, "Validate the manifest and exit")

	renderCmd.MarkFlagRequired("manifest")

	generateCmd.Flags().StringP("actor", "a", "", "Actor name to build the quiz for")
	generateCmd.Flags().StringP("output", "o", "manifest.json", "Manifest JSON file to write")
	generateCmd.Flags().StringSlice("captions", nil, "Hint captions, hardest first (default built in)")
	generateCmd.Flags().BoolP("verbose", "v", false, "Print the ranked movie list")

	generateCmd.MarkFlagRequired("actor")

	serveCmd.Flags().String("config", "", "Server config YAML file")
	serveCmd.Flags().String("addr", "", "Listen address (overrides config)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load .env file: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
