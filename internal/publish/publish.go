package publish

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"kanbanflow/internal/model"
)

type WriteOptions struct {
	IncludeActivity bool
	Overwrite       bool
	// HTML also writes an .html page next to every .md page.
	HTML bool
}

type WriteResult struct {
	Written []string `json:"written"`
}

func WriteCard(b model.Board, cardID string, toDir string, opt WriteOptions) (WriteResult, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return WriteResult{}, errors.New("missing cardID")
	}
	md, err := RenderCardMarkdown(b, cardID, RenderOptions{IncludeActivity: opt.IncludeActivity})
	if err != nil {
		return WriteResult{}, err
	}
	_, cardsDir, err := prepareDirs(toDir)
	if err != nil {
		return WriteResult{}, err
	}
	written, err := writePage(filepath.Join(cardsDir, cardID+".md"), cardTitle(b, cardID), md, opt)
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Written: written}, nil
}

// WriteBoard writes index.md plus one cards/<id>.md page per card, in board order.
func WriteBoard(b model.Board, toDir string, opt WriteOptions) (WriteResult, error) {
	root, cardsDir, err := prepareDirs(toDir)
	if err != nil {
		return WriteResult{}, err
	}
	written, err := writePage(filepath.Join(root, "index.md"), b.Title, RenderBoardMarkdown(b), opt)
	if err != nil {
		return WriteResult{}, err
	}

	for _, listID := range b.ListOrder {
		for _, c := range b.CardsInList(listID) {
			md, err := RenderCardMarkdown(b, c.ID, RenderOptions{IncludeActivity: opt.IncludeActivity})
			if err != nil {
				return WriteResult{}, err
			}
			paths, err := writePage(filepath.Join(cardsDir, c.ID+".md"), c.Title, md, opt)
			if err != nil {
				return WriteResult{}, err
			}
			written = append(written, paths...)
		}
	}

	return WriteResult{Written: written}, nil
}

// writePage writes mdPath and, with opt.HTML, its .html sibling.
func writePage(mdPath, title, md string, opt WriteOptions) ([]string, error) {
	if err := writeFile(mdPath, []byte(md), opt.Overwrite); err != nil {
		return nil, err
	}
	if !opt.HTML {
		return []string{mdPath}, nil
	}
	page, err := RenderHTML(title, md)
	if err != nil {
		return nil, err
	}
	htmlPath := strings.TrimSuffix(mdPath, ".md") + ".html"
	if err := writeFile(htmlPath, page, opt.Overwrite); err != nil {
		return nil, err
	}
	return []string{mdPath, htmlPath}, nil
}

// prepareDirs creates toDir/cards and returns the cleaned root and the cards dir.
func prepareDirs(toDir string) (root, cardsDir string, err error) {
	root = strings.TrimSpace(toDir)
	if root == "" {
		return "", "", errors.New("missing --to")
	}
	root = filepath.Clean(root)
	cardsDir = filepath.Join(root, "cards")
	if err := os.MkdirAll(cardsDir, 0o755); err != nil {
		return "", "", err
	}
	return root, cardsDir, nil
}

func cardTitle(b model.Board, cardID string) string {
	if c, ok := b.FindCard(cardID); ok {
		return c.Title
	}
	return cardID
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}
