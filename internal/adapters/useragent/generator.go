package useragent

import (
	"context"
	"fmt"

	"github.com/bnema/memefi-tapper/internal/ports"
)

var androidVersions = []string{"10", "11", "12", "13", "14"}

var androidDevices = []string{
	"SM-G991B",
	"SM-G998B",
	"SM-A525F",
	"SM-S908E",
	"Pixel 6",
	"Pixel 7 Pro",
	"Pixel 8",
	"M2101K6G",
	"2201116SG",
	"CPH2451",
	"RMX3371",
	"LE2123",
}

var chromeMajors = []int{118, 119, 120, 121, 122, 123, 124, 125, 126}

// Generator produces Android Chrome user agents.
type Generator struct {
	rand ports.Random
}

func NewGenerator(r ports.Random) *Generator {
	if r == nil {
		r = ports.SystemRandom{}
	}
	return &Generator{rand: r}
}

func (g *Generator) Generate() string {
	version := androidVersions[g.rand.IntN(len(androidVersions))]
	device := androidDevices[g.rand.IntN(len(androidDevices))]
	major := chromeMajors[g.rand.IntN(len(chromeMajors))]
	build := 6000 + g.rand.IntN(500)
	patch := g.rand.IntN(200)

	return fmt.Sprintf(
		"Mozilla/5.0 (Linux; Android %s; %s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%d.0.%d.%d Mobile Safari/537.36",
		version, device, major, build, patch,
	)
}

// Ensure returns the signature stored for sessionName, generating and
// persisting a new one on first use.
func Ensure(ctx context.Context, store ports.SignatureStore, gen *Generator, sessionName string) (string, error) {
	signature, found, err := store.Get(ctx, sessionName)
	if err != nil {
		return "", fmt.Errorf("load signature for %s: %w", sessionName, err)
	}
	if found && signature != "" {
		return signature, nil
	}

	signature = gen.Generate()
	if err := store.Put(ctx, sessionName, signature); err != nil {
		return "", fmt.Errorf("save signature for %s: %w", sessionName, err)
	}

	return signature, nil
}
