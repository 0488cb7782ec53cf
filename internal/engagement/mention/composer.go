package mention

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Threads is the thread-scoped lookup surface the composer needs; the
// comment store satisfies it.
type Threads interface {
	AuthorLogin(id int64) (string, bool)
	TopLevelParentOf(id int64) (int64, bool)
	ParticipantHandles(topLevelID int64) []string
}

// mentionRe matches an in-progress mention token at the end of the draft:
// start of string or whitespace, then @, then word/hyphen characters.
var mentionRe = regexp.MustCompile(`(^|\s)@([\w-]*)$`)

// trailingTokenRe is the replacement target when a suggestion is accepted.
var trailingTokenRe = regexp.MustCompile(`@([\w-]*)$`)

// Composer manages the reply draft and its mention-suggestion overlay for
// one comment section.
type Composer struct {
	threads Threads

	draft       string
	replyTo     int64 // 0 = not replying
	prefix      string
	query       string
	suggestions []string
	showing     bool
}

func NewComposer(threads Threads) *Composer {
	return &Composer{threads: threads}
}

// BeginReply targets a comment and pre-fills the draft with the protected
// "@handle " prefix. Returns false when the target cannot be resolved.
func (c *Composer) BeginReply(commentID int64) bool {
	login, ok := c.threads.AuthorLogin(commentID)
	if !ok {
		return false
	}
	c.replyTo = commentID
	c.prefix = "@" + login + " "
	c.draft = c.prefix
	c.hideSuggestions()
	return true
}

// SetDraft replaces the draft text and re-evaluates the suggestion overlay.
func (c *Composer) SetDraft(text string) {
	c.draft = text

	match := mentionRe.FindStringSubmatch(text)
	if match == nil {
		c.hideSuggestions()
		return
	}

	partial := match[2]
	var pool []string
	if c.replyTo != 0 {
		if rootID, ok := c.threads.TopLevelParentOf(c.replyTo); ok {
			pool = c.threads.ParticipantHandles(rootID)
		}
	}

	filtered := make([]string, 0, len(pool))
	for _, handle := range pool {
		// Never suggest the person already being replied to.
		if strings.HasPrefix(handle, partial) && "@"+handle+" " != c.prefix {
			filtered = append(filtered, handle)
		}
	}

	c.query = partial
	c.suggestions = filtered
	c.showing = true
}

// Accept replaces the trailing partial token with the chosen handle plus a
// trailing space and hides the overlay.
func (c *Composer) Accept(handle string) {
	c.draft = trailingTokenRe.ReplaceAllString(c.draft, handle+" ")
	c.hideSuggestions()
}

// Backspace handles one backward deletion at the given caret position
// (counted in runes). Deleting into the protected prefix while replying
// clears the whole reply state atomically and suppresses the keystroke;
// the return value reports the suppression.
func (c *Composer) Backspace(caret int) bool {
	if c.replyTo == 0 || c.prefix == "" {
		return false
	}
	if caret > utf8.RuneCountInString(c.prefix) {
		return false
	}
	c.clearReply()
	return true
}

// CancelReply is the explicit user action; same atomic clearing, no caret
// condition.
func (c *Composer) CancelReply() {
	c.clearReply()
}

func (c *Composer) clearReply() {
	c.replyTo = 0
	c.prefix = ""
	c.draft = ""
	c.hideSuggestions()
}

func (c *Composer) hideSuggestions() {
	c.showing = false
	c.suggestions = nil
	c.query = ""
}

func (c *Composer) Draft() string { return c.draft }

// ReplyTo returns the reply target, if any.
func (c *Composer) ReplyTo() (int64, bool) { return c.replyTo, c.replyTo != 0 }

// Prefix returns the protected mention prefix ("@handle ") while replying.
func (c *Composer) Prefix() string { return c.prefix }

// Suggestions returns the current candidate handles; meaningful only while
// Showing is true.
func (c *Composer) Suggestions() []string { return c.suggestions }

func (c *Composer) Showing() bool { return c.showing }

// Query returns the partial token being completed (without the @).
func (c *Composer) Query() string { return c.query }
