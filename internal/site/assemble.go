package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aboutme-website/aboutme-be/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	siteTheme        = "portfolio-theme"
	metaDescription  = "This is meta description"
	defaultAuthorImg = "/images/default-profile-pic.png"
	defaultBlogImg   = "images/blog/default-blog-post-image.jpg"
	signatureImg     = "images/about/signature.png"

	// ISO-like timestamp with microseconds, matching the theme's date parsing.
	postTimeFormat = "2006-01-02T15:04:05.000000-0700"
)

var skillBarColors = []string{"#fdb157", "#9473e6", "#bdecf6"}

// Assembler renders profile, skills and blog post data into the text
// artifacts the static-site generator consumes. Every artifact is emitted
// through the YAML encoder, so user-supplied strings can never break out of
// the surrounding structure.
type Assembler struct {
	baseURL string
}

// NewAssembler creates a new Assembler. baseURL is the public root all sites
// are served under.
func NewAssembler(baseURL string) *Assembler {
	return &Assembler{baseURL: strings.TrimRight(baseURL, "/")}
}

// Assemble writes all generated artifacts into the source workspace:
// site config, about-info data, the skills data file (only when the user has
// skills), and one content document per blog post.
func (a *Assembler) Assemble(ws Workspace, profile models.UserProfile, posts []models.BlogPost) error {
	if profile.FirstName == "" || profile.LastName == "" || profile.Email == "" {
		return fmt.Errorf("profile for user %s is missing required fields", profile.UserID)
	}

	for _, dir := range []string{"content/about", "content/blog", "data"} {
		if err := os.MkdirAll(filepath.Join(ws.SourceDir, dir), 0o755); err != nil {
			return fmt.Errorf("create content directory %s: %w", dir, err)
		}
	}

	if err := a.writeSiteConfig(ws, profile); err != nil {
		return fmt.Errorf("site config: %w", err)
	}
	if err := a.writeAboutInfo(ws, profile); err != nil {
		return fmt.Errorf("about info: %w", err)
	}
	if err := a.writeSkills(ws, profile); err != nil {
		return fmt.Errorf("skills data: %w", err)
	}
	for _, post := range posts {
		if err := a.writeBlogPost(ws, profile, post); err != nil {
			return fmt.Errorf("blog post %d: %w", post.PostID, err)
		}
	}
	return nil
}

type siteConfig struct {
	BaseURL       string     `yaml:"baseURL"`
	LanguageCode  string     `yaml:"languageCode"`
	Title         string     `yaml:"title"`
	Theme         string     `yaml:"theme"`
	SummaryLength string     `yaml:"summaryLength"`
	Menu          siteMenu   `yaml:"menu"`
	Params        siteParams `yaml:"params"`
}

type siteMenu struct {
	Main []menuEntry `yaml:"main"`
}

type menuEntry struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"URL"`
	Weight int    `yaml:"weight"`
}

type siteParams struct {
	Logo        string      `yaml:"logo"`
	Home        string      `yaml:"home"`
	Description string      `yaml:"description"`
	Author      string      `yaml:"author"`
	Plugins     sitePlugins `yaml:"plugins"`
	Preloader   toggle      `yaml:"preloader"`
	Contact     contactInfo `yaml:"contact"`
	Footer      footerInfo  `yaml:"footer"`
}

type sitePlugins struct {
	CSS []pluginRef `yaml:"css"`
	JS  []pluginRef `yaml:"js"`
}

type pluginRef struct {
	URL string `yaml:"URL"`
}

type toggle struct {
	Enable bool `yaml:"enable"`
}

type contactInfo struct {
	Enable     bool   `yaml:"enable"`
	FormAction string `yaml:"formAction"`
}

type footerInfo struct {
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	Address string `yaml:"address"`
}

// writeSiteConfig regenerates hugo.yaml in full on every run.
func (a *Assembler) writeSiteConfig(ws Workspace, profile models.UserProfile) error {
	cfg := siteConfig{
		BaseURL:       a.baseURL + "/" + ws.Slug,
		LanguageCode:  "en-us",
		Title:         flatten(models.TitleCase(profile.FirstName)) + "'s Website",
		Theme:         siteTheme,
		SummaryLength: "10",
		Menu: siteMenu{
			Main: []menuEntry{{Name: "Blog", URL: "blog", Weight: 2}},
		},
		Params: siteParams{
			Logo:        "images/logo.svg",
			Home:        "Home",
			Description: metaDescription,
			Author:      flatten(profile.DisplayName()),
			Plugins: sitePlugins{
				CSS: []pluginRef{
					{URL: "plugins/bootstrap/bootstrap.min.css"},
					{URL: "plugins/slick/slick.css"},
					{URL: "plugins/themify-icons/themify-icons.css"},
				},
				JS: []pluginRef{
					{URL: "plugins/jQuery/jquery.min.js"},
					{URL: "plugins/bootstrap/bootstrap.min.js"},
					{URL: "plugins/slick/slick.min.js"},
					{URL: "plugins/shuffle/shuffle.min.js"},
				},
			},
			Preloader: toggle{Enable: true},
			Contact:   contactInfo{Enable: false, FormAction: "#"},
			Footer:    footerInfo{Email: flatten(profile.Email), Phone: "N/A", Address: "N/A"},
		},
	}
	return writeYAML(filepath.Join(ws.SourceDir, "hugo.yaml"), cfg)
}

type aboutInfo struct {
	Info aboutFields `yaml:"info"`
}

type aboutFields struct {
	Title           string `yaml:"title"`
	Date            string `yaml:"date"`
	Description     string `yaml:"description"`
	Author          string `yaml:"author"`
	AuthorImage     string `yaml:"authorImage"`
	AuthorSignature string `yaml:"authorSignature"`
	Content         string `yaml:"content"`
	Profession      string `yaml:"profession"`
	// The theme reads this misspelled key.
	CurrentEmployer string `yaml:"currentEmployeer"`
}

// writeAboutInfo emits data/aboutinfo.yml, the field set behind the about page.
func (a *Assembler) writeAboutInfo(ws Workspace, profile models.UserProfile) error {
	authorImage := defaultAuthorImg
	if profile.ProfilePic != "" {
		authorImage = fmt.Sprintf("%s/images/profile/%s", ws.Slug, profile.ProfilePic)
	}

	info := aboutInfo{Info: aboutFields{
		Title:           "About Me",
		Date:            profile.CreatedAt.UTC().Format(time.RFC3339),
		Description:     metaDescription,
		Author:          flatten(profile.DisplayName()),
		AuthorImage:     authorImage,
		AuthorSignature: signatureImg,
		Content:         profile.Description,
		Profession:      flatten(profile.Profession),
		CurrentEmployer: flatten(profile.CurrentEmployer),
	}}
	return writeYAML(filepath.Join(ws.SourceDir, "data", "aboutinfo.yml"), info)
}

type skillsInfo struct {
	Skill skillSection `yaml:"skill"`
}

type skillSection struct {
	Enable   bool       `yaml:"enable"`
	Skillbar []skillBar `yaml:"skillbar"`
}

type skillBar struct {
	Title    string `yaml:"title"`
	Progress string `yaml:"progress"`
	Color    string `yaml:"color"`
}

// writeSkills emits data/skillsinfo.yml. A user without skills gets no file
// at all; the theme treats absence as "section disabled".
func (a *Assembler) writeSkills(ws Workspace, profile models.UserProfile) error {
	skillsPath := filepath.Join(ws.SourceDir, "data", "skillsinfo.yml")
	if len(profile.TopSkills) == 0 {
		// A stale file from a previous run must not survive a skill removal.
		if err := os.Remove(skillsPath); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	skills := profile.TopSkills
	if len(skills) > 3 {
		skills = skills[:3]
	}

	section := skillSection{Enable: true}
	for i, name := range skills {
		section.Skillbar = append(section.Skillbar, skillBar{
			Title:    flatten(name),
			Progress: "80%",
			Color:    skillBarColors[i%len(skillBarColors)],
		})
	}
	return writeYAML(skillsPath, skillsInfo{Skill: section})
}

type postFrontMatter struct {
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
	Author      string `yaml:"author"`
	Type        string `yaml:"type"`
}

// writeBlogPost emits content/blog/<title-slug>-<postID>.md. The numeric post
// id keeps file names unique even when titles collide. An existing file with
// the same name is replaced.
func (a *Assembler) writeBlogPost(ws Workspace, profile models.UserProfile, post models.BlogPost) error {
	fm := postFrontMatter{
		Title:       flatten(post.Title),
		Date:        post.CreatedAt.UTC().Format(postTimeFormat),
		Image:       defaultBlogImg,
		Description: metaDescription,
		Author:      flatten(profile.DisplayName()),
		Type:        "post",
	}

	encoded, err := yaml.Marshal(fm)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(encoded)
	b.WriteString("---\n")
	b.WriteString(post.Description)
	if !strings.HasSuffix(post.Description, "\n") {
		b.WriteString("\n")
	}

	path := filepath.Join(ws.SourceDir, "content", "blog", PostSlug(post.Title, post.PostID)+".md")
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// PostSlug returns the public name of a blog post document: the slugified
// title joined with the numeric post id. A title with no slugifiable
// characters falls back to "post" so the name never starts with the id.
func PostSlug(title string, postID int64) string {
	slug := Slugify(title)
	if slug == "" {
		slug = "post"
	}
	return fmt.Sprintf("%s-%d", slug, postID)
}

func writeYAML(path string, v any) error {
	encoded, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o644)
}

// flatten collapses newlines in fields the templates render on a single line.
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
