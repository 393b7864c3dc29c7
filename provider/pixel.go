package provider

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/tiendaluna/telemetry/analytics"
)

const (
	pixelScriptURL = "https://connect.facebook.net/en_US/fbevents.js"
	pixelTrackURL  = "https://www.facebook.com/tr"
)

// Pixel is the social pixel provider. Bootstrap fetches the pixel script;
// Send issues a tr hit carrying the event as custom-data parameters.
type Pixel struct {
	pixelID   string
	scriptURL string
	trackURL  string
	client    *http.Client
}

func NewPixel(pixelID string) *Pixel {
	return &Pixel{
		pixelID:   pixelID,
		scriptURL: pixelScriptURL,
		trackURL:  pixelTrackURL,
		client:    http.DefaultClient,
	}
}

func (p *Pixel) Name() string {
	return "pixel"
}

func (p *Pixel) Bootstrap() error {
	resp, err := p.client.Get(p.scriptURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pixel script fetch: status %d", resp.StatusCode)
	}
	return nil
}

func (p *Pixel) Send(event analytics.Event) error {
	params := url.Values{}
	params.Set("id", p.pixelID)
	params.Set("ev", event.Action)
	params.Set("cd[category]", string(event.Category))
	if event.Label != "" {
		params.Set("cd[label]", event.Label)
	}
	for k, v := range event.Metadata {
		params.Set("cd["+k+"]", fmt.Sprint(v))
	}

	resp, err := p.client.Get(p.trackURL + "?" + params.Encode())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pixel track: status %d", resp.StatusCode)
	}
	return nil
}
