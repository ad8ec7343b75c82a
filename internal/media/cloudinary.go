package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"CAMPUSMARKET_BACK-END/internal/config"
)

// DefaultBaseURL is the Cloudinary API root
const DefaultBaseURL = "https://api.cloudinary.com/v1_1"

// Cloudinary implements Store against the Cloudinary upload API
type Cloudinary struct {
	cloudName string
	apiKey    string
	apiSecret string
	folder    string

	// BaseURL can be overridden for tests
	BaseURL string

	client *http.Client
}

// NewCloudinary creates a Cloudinary media store from config
func NewCloudinary(cfg config.MediaConfig) *Cloudinary {
	return &Cloudinary{
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		folder:    cfg.Folder,
		BaseURL:   DefaultBaseURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// sign produces the Cloudinary request signature: SHA-1 over the
// alphabetically ordered params followed by the API secret
func (c *Cloudinary) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + c.apiSecret))
	return hex.EncodeToString(sum[:])
}

type uploadResult struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload sends the image to Cloudinary and returns its public URL
func (c *Cloudinary) Upload(ctx context.Context, filename string, contents io.Reader) (string, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"folder":    c.folder,
		"timestamp": timestamp,
	}

	var body strings.Builder
	writer := multipart.NewWriter(&body)
	for k, v := range params {
		if err := writer.WriteField(k, v); err != nil {
			return "", err
		}
	}
	if err := writer.WriteField("api_key", c.apiKey); err != nil {
		return "", err
	}
	if err := writer.WriteField("signature", c.sign(params)); err != nil {
		return "", err
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, contents); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", c.BaseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result uploadResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload failed (%d): %s", resp.StatusCode, result.Error.Message)
	}
	return result.SecureURL, nil
}

// Delete removes the image behind imageURL from Cloudinary
func (c *Cloudinary) Delete(ctx context.Context, imageURL string) error {
	publicID := PublicIDFromURL(imageURL)
	if publicID == "" {
		return fmt.Errorf("no public id in %q", imageURL)
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	params := map[string]string{
		"public_id": publicID,
		"timestamp": timestamp,
	}

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign(params))

	endpoint := fmt.Sprintf("%s/%s/image/destroy", c.BaseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode destroy response: %w", err)
	}
	if result.Result != "ok" {
		return fmt.Errorf("destroy %s: %s", publicID, result.Result)
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicIDFromURL extracts the Cloudinary public id from a delivery URL,
// e.g. ".../image/upload/v123/campusmarket/abc.jpg" -> "campusmarket/abc".
// Returns "" when the URL is not a Cloudinary upload URL.
func PublicIDFromURL(imageURL string) string {
	_, after, found := strings.Cut(imageURL, "/upload/")
	if !found || after == "" {
		return ""
	}

	segments := strings.Split(after, "/")
	if versionSegment.MatchString(segments[0]) {
		segments = segments[1:]
	}
	if len(segments) == 0 {
		return ""
	}

	id := strings.Join(segments, "/")
	return strings.TrimSuffix(id, path.Ext(id))
}
