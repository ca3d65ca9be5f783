// Scan a directory of template images for pairs that look alike. Templates
// that hash as similar are likely to be confused with each other on screen.

package main

import (
	"fmt"
	"image"
	"log"
	"path"
	"path/filepath"
	"sort"
	"sync"

	cli "github.com/spf13/cobra"
	"github.com/vcaesar/imgo"

	"gitlab.com/web-doodle/mavis/pkg/vision"
)

var (
	compareCmd = &cli.Command{
		Use:   "compare [a.png b.png]",
		Short: "Find templates that look alike",
		Long:  "Compare two images, or every pair of images in --source, by perceptual hash.",
		RunE:  Compare,
	}
)

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringP("source", "s", "", "Directory of template images to scan.")
	compareCmd.Flags().Int("max-queue", 8, "Maximum number of images compared in parallel.")
}

func getId(imgPath string) string {
	filename := filepath.Base(imgPath)
	return filename[0 : len(filename)-len(filepath.Ext(filename))]
}

func Compare(cmd *cli.Command, args []string) error {
	sourceDir, _ := cmd.Flags().GetString("source")
	maxQueue, _ := cmd.Flags().GetInt("max-queue")

	var filePaths []string
	switch {
	case len(args) == 2:
		filePaths = args
	case len(args) == 0 && sourceDir != "":
		for _, ext := range []string{"png", "jpg", "jpeg"} {
			matches, err := filepath.Glob(path.Join(sourceDir, "*."+ext))
			if err != nil {
				return err
			}
			filePaths = append(filePaths, matches...)
		}
	default:
		return fmt.Errorf("pass two images or --source")
	}

	s := app.Spinner("Comparing templates")
	similars, err := scanSimilar(filePaths, maxQueue, func(src, cmp string) {
		s.Lock()
		s.Suffix = fmt.Sprintf(" Comparing %s to %s", getId(src), getId(cmp))
		s.Unlock()
	})
	s.Stop()
	if err != nil {
		return err
	}

	log.Printf("Compared %d images, %d similar pairs\n", len(filePaths), len(similars))
	for _, similar := range similars {
		printf(cmd, "%s similar to %s\n", similar[0], similar[1])
	}
	return nil
}

// scanSimilar compares every unordered pair of images once using up to
// workers goroutines. Pairs come back sorted.
func scanSimilar(filePaths []string, workers int, progress func(src, cmp string)) ([][2]string, error) {
	if workers <= 0 {
		workers = 1
	}
	imgs := make([]image.Image, len(filePaths))
	for i, p := range filePaths {
		img, _, err := imgo.DecodeFile(p)
		if err != nil {
			return nil, fmt.Errorf("%v: %s", err, p)
		}
		imgs[i] = img
	}

	var (
		mu       sync.Mutex
		similars [][2]string
		wg       sync.WaitGroup
	)
	queue := make(chan int, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				for j := i + 1; j < len(imgs); j++ {
					mu.Lock()
					if progress != nil {
						progress(filePaths[i], filePaths[j])
					}
					mu.Unlock()
					if vision.Similar(imgs[i], imgs[j]) {
						mu.Lock()
						similars = append(similars, [2]string{getId(filePaths[i]), getId(filePaths[j])})
						mu.Unlock()
					}
				}
			}
		}()
	}
	for i := range imgs {
		queue <- i
	}
	close(queue)
	wg.Wait()

	sort.Slice(similars, func(a, b int) bool {
		if similars[a][0] != similars[b][0] {
			return similars[a][0] < similars[b][0]
		}
		return similars[a][1] < similars[b][1]
	})
	return similars, nil
}
