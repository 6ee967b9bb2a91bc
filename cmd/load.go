package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Send generated documents to a running server",
	Long: `Generate random movie documents and POST them in batches to
/indexes/{index}/documents of a running go-search server. Each batch body is
streamed, so large batches exercise the chunked ingestion path.

Examples:
  go-search load --docs 100000 --batch 5000
  go-search load --url http://localhost:9090 --index films`,
	RunE: runLoad,
}

func init() {
	flags := loadCmd.Flags()
	flags.String("url", "http://localhost:7700", "Server base URL")
	flags.String("index", "movies", "Target index")
	flags.Int("docs", 1000, "Number of documents to send")
	flags.Int("batch", 100, "Documents per request")
	rootCmd.AddCommand(loadCmd)
}

type movie struct {
	ID     string  `json:"id"`
	Title  string  `json:"title"`
	Year   int     `json:"year"`
	Rating float64 `json:"rating"`
}

// generateTitle generates a random two-word title
func generateTitle(rng *rand.Rand) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	word := func() string {
		w := make([]byte, 3+rng.Intn(6))
		for i := range w {
			w[i] = letters[rng.Intn(len(letters))]
		}
		w[0] -= 32
		return string(w)
	}
	return word() + " " + word()
}

// streamBatch writes movies first..first+count as a JSON array into a pipe
func streamBatch(rng *rand.Rand, first, count int) io.Reader {
	pr, pw := io.Pipe()
	docs := make([]movie, count)
	for i := range docs {
		docs[i] = movie{
			ID:     fmt.Sprintf("m%d", first+i),
			Title:  generateTitle(rng),
			Year:   1920 + rng.Intn(105),
			Rating: float64(rng.Intn(100)) / 10,
		}
	}
	go func() {
		enc := json.NewEncoder(pw)
		pw.Write([]byte("["))
		for i, doc := range docs {
			if i > 0 {
				pw.Write([]byte(","))
			}
			if err := enc.Encode(doc); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.Write([]byte("]"))
		pw.Close()
	}()
	return pr
}

func sendBatch(client *http.Client, target string, body io.Reader) (uint64, error) {
	resp, err := client.Post(target, "application/json", body)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var accepted struct {
		UpdateID uint64 `json:"updateId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&accepted); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	return accepted.UpdateID, nil
}

func runLoad(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	baseURL, _ := flags.GetString("url")
	index, _ := flags.GetString("index")
	total, _ := flags.GetInt("docs")
	batch, _ := flags.GetInt("batch")
	if total <= 0 || batch <= 0 {
		return fmt.Errorf("--docs and --batch must be greater than 0")
	}

	out := cmd.OutOrStdout()
	target := strings.TrimRight(baseURL, "/") + "/indexes/" + index + "/documents?primaryKey=id"
	client := &http.Client{Timeout: 5 * time.Minute}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	fmt.Fprintf(out, "Sending %d documents to %s in batches of %d\n", total, target, batch)

	start := time.Now()
	sent, failed := 0, 0
	var lastID uint64
	for first := 0; first < total; first += batch {
		count := min(batch, total-first)
		id, err := sendBatch(client, target, streamBatch(rng, first, count))
		if err != nil {
			failed++
			fmt.Fprintf(out, "Batch starting at %d failed: %v\n", first, err)
			continue
		}
		sent += count
		lastID = id
	}

	elapsed := time.Since(start)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "Documents accepted:  %d/%d\n", sent, total)
	fmt.Fprintf(out, "Failed batches:      %d\n", failed)
	fmt.Fprintf(out, "Last update id:      %d\n", lastID)
	fmt.Fprintf(out, "Total time:          %v\n", elapsed)
	fmt.Fprintf(out, "Average rate:        %.2f docs/sec\n", float64(sent)/elapsed.Seconds())

	if failed > 0 {
		return fmt.Errorf("%d batches failed", failed)
	}
	return nil
}
