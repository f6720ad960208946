// Package advisory derives feedback, a remediation roadmap and résumé
// rewrite suggestions from a role's missing skills. Output is a pure
// function of the inputs.
package advisory

import (
	"fmt"
	"strings"

	"rolefit/internal/fitlevel"
)

// Bundle is the guidance attached to an analysis.
type Bundle struct {
	FeedbackText       string   `json:"feedbackText"`
	Roadmap            []string `json:"roadmap"`
	RewriteSuggestions string   `json:"rewriteSuggestions"`
	Tips               []string `json:"tips"`
}

// ATSKeywordThreshold is the score below which a keyword tip is emitted.
const ATSKeywordThreshold = 60

var careerAdvice = []string{
	"Build 2–3 real-world projects",
	"Add measurable achievements",
	"Optimize resume for keywords",
}

var bestPracticeBullets = []string{
	"Used industry best practices",
	"Improved system performance and scalability",
}

// Advise composes the Bundle for role at level with the given missing
// skills, in the order given. Tips is left empty; see Tips.
func Advise(role string, level fitlevel.Level, missing []string) Bundle {
	return Bundle{
		FeedbackText:       Feedback(role, level, missing),
		Roadmap:            Roadmap(missing),
		RewriteSuggestions: RewriteSuggestions(role, missing),
		Tips:               []string{},
	}
}

// AdviseWithTips is Advise plus the score-dependent Tips.
func AdviseWithTips(role string, level fitlevel.Level, score int, missing []string) Bundle {
	b := Advise(role, level, missing)
	b.Tips = Tips(role, score, missing)
	return b
}

// Feedback states the rating, lists one remediation line per missing skill
// and closes with fixed career advice.
func Feedback(role string, level fitlevel.Level, missing []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your resume is rated **%s** for the role **%s**.\n", level, role)

	if len(missing) > 0 {
		b.WriteString("\n### Skills to Improve:\n")
		for _, skill := range missing {
			fmt.Fprintf(&b, "- Learn and practice **%s**\n", skill)
		}
	}

	b.WriteString("\n### Career Advice:\n")
	for _, line := range careerAdvice {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

// Roadmap returns one step per missing skill. It is never nil.
func Roadmap(missing []string) []string {
	steps := make([]string, 0, len(missing))
	for _, skill := range missing {
		steps = append(steps, fmt.Sprintf("Learn and build a small project in %s", skill))
	}
	return steps
}

// RewriteSuggestions returns bullet templates for the missing skills followed
// by fixed best-practice bullets.
func RewriteSuggestions(role string, missing []string) string {
	var b strings.Builder
	b.WriteString("### Resume Improvement Suggestions\n\n")
	fmt.Fprintf(&b, "**Target Role:** %s\n\n", role)
	b.WriteString("Add bullet points like:\n")
	for _, skill := range missing {
		fmt.Fprintf(&b, "- Hands-on experience with %s through projects\n", skill)
	}
	for _, line := range bestPracticeBullets {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	return b.String()
}

// Tips returns short ATS-oriented tips: a keyword tip when score is below
// ATSKeywordThreshold, one project tip per missing skill, then a closing
// tailoring tip.
func Tips(role string, score int, missing []string) []string {
	tips := make([]string, 0, len(missing)+2)
	if score < ATSKeywordThreshold {
		tips = append(tips, "Improve resume keywords for ATS systems.")
	}
	for _, skill := range missing {
		tips = append(tips, fmt.Sprintf("Add a project showcasing %s.", skill))
	}
	tips = append(tips, fmt.Sprintf("Customize resume for %s.", role))
	return tips
}
