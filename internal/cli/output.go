package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Guest:
		o.printGuest(v)
	case []Guest:
		o.printGuests(v)
	case SignInResult:
		o.printSignInResult(v)
	case Photo:
		o.printPhoto(v)
	case []Photo:
		o.printPhotos(v)
	case LikeResult:
		o.printLikeResult(v)
	case PhotoCountResult:
		fmt.Printf("Photo Count: %d\n", v.PhotoCount)
	case []UploadTask:
		o.printUploadTasks(v)
	case HealthResult:
		fmt.Printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Guest response type (matches API)
type Guest struct {
	ID           string     `json:"id"`
	DisplayName  string     `json:"display_name"`
	Nickname     string     `json:"nickname,omitempty"`
	Role         string     `json:"role"`
	PhotoCount   int        `json:"photo_count"`
	LastActiveAt time.Time  `json:"last_active_at"`
	LastUploadAt *time.Time `json:"last_upload_at,omitempty"`
}

// SignInResult combines a guest with the returning flag
type SignInResult struct {
	Guest     Guest `json:"guest"`
	Returning bool  `json:"returning"`
}

// Photo response type
type Photo struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	UploaderID   string    `json:"uploader_id"`
	UploaderName string    `json:"uploader_name"`
	UploaderRole string    `json:"uploader_role"`
	UploadedAt   time.Time `json:"uploaded_at"`
	LikeCount    int       `json:"like_count"`
	LikedBy      []string  `json:"liked_by"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
}

// LikeResult response type
type LikeResult struct {
	Liked bool `json:"liked"`
}

// PhotoCountResult response type
type PhotoCountResult struct {
	PhotoCount int `json:"photo_count"`
}

// UploadTask response type
type UploadTask struct {
	ID       string  `json:"id"`
	FileName string  `json:"file_name"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
	Error    string  `json:"error,omitempty"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printGuest(g Guest) {
	name := g.DisplayName
	if g.Nickname != "" {
		name = fmt.Sprintf("%s (%s)", g.DisplayName, g.Nickname)
	}
	fmt.Printf("Guest: %s\n", name)
	fmt.Printf("ID: %s\n", g.ID)
	fmt.Printf("Role: %s\n", g.Role)
	fmt.Printf("Photos: %d\n", g.PhotoCount)
	fmt.Printf("Last Active: %s\n", g.LastActiveAt.Format(time.RFC3339))
}

func (o *Output) printGuests(guests []Guest) {
	fmt.Printf("Guests (%d):\n", len(guests))
	for _, g := range guests {
		roleStr := ""
		if g.Role != "guest" {
			roleStr = " [" + g.Role + "]"
		}
		fmt.Printf("  - %s (%s) - %d photos%s\n", g.DisplayName, g.ID, g.PhotoCount, roleStr)
	}
}

func (o *Output) printSignInResult(r SignInResult) {
	if r.Returning {
		fmt.Printf("Welcome back, %s!\n", r.Guest.DisplayName)
	} else {
		fmt.Printf("Welcome, %s!\n", r.Guest.DisplayName)
	}
	o.printGuest(r.Guest)
}

func (o *Output) printPhoto(p Photo) {
	fmt.Printf("Photo: %s\n", p.ID)
	fmt.Printf("Uploader: %s\n", p.UploaderName)
	fmt.Printf("Uploaded: %s\n", p.UploadedAt.Format(time.RFC3339))
	fmt.Printf("URL: %s\n", p.URL)
	if p.Width > 0 && p.Height > 0 {
		fmt.Printf("Dimensions: %dx%d\n", p.Width, p.Height)
	}
	fmt.Printf("Likes: %d\n", p.LikeCount)
}

func (o *Output) printPhotos(photos []Photo) {
	fmt.Printf("Photos (%d):\n", len(photos))
	for _, p := range photos {
		likeStr := ""
		if p.LikeCount > 0 {
			likeStr = fmt.Sprintf(" - %d likes", p.LikeCount)
		}
		fmt.Printf("  - %s by %s at %s%s\n", p.ID, p.UploaderName, p.UploadedAt.Format("15:04:05"), likeStr)
	}
}

func (o *Output) printLikeResult(r LikeResult) {
	if r.Liked {
		fmt.Println("Liked")
	} else {
		fmt.Println("Like removed")
	}
}

func (o *Output) printUploadTasks(tasks []UploadTask) {
	fmt.Printf("Uploads (%d):\n", len(tasks))
	for _, t := range tasks {
		line := fmt.Sprintf("  - %s: %s (%.0f%%)", t.FileName, t.Status, t.Progress)
		if t.Error != "" {
			line += " - " + t.Error
		}
		fmt.Println(line)
	}
}

func printSuggestions(suggestions []Suggestion) {
	fmt.Println("Did you mean one of these guests?")
	for _, s := range suggestions {
		name := s.DisplayName
		if s.Nickname != "" {
			name = fmt.Sprintf("%s (%s)", s.DisplayName, s.Nickname)
		}
		fmt.Printf("  - %s - %d photos\n    confirm with: snapfest signin --confirm %s\n", name, s.PhotoCount, s.ID)
	}
}
