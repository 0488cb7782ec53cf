package mention

import (
	"reflect"
	"testing"
)

// fakeThreads describes one thread: comment 10 by "ana" with replies 11
// ("bruno") and 12 ("carla"), plus an unrelated top-level comment 20 ("davi").
type fakeThreads struct{}

func (fakeThreads) AuthorLogin(id int64) (string, bool) {
	logins := map[int64]string{10: "ana", 11: "bruno", 12: "carla", 20: "davi"}
	login, ok := logins[id]
	return login, ok
}

func (fakeThreads) TopLevelParentOf(id int64) (int64, bool) {
	switch id {
	case 10, 11, 12:
		return 10, true
	case 20:
		return 20, true
	}
	return 0, false
}

func (fakeThreads) ParticipantHandles(topLevelID int64) []string {
	switch topLevelID {
	case 10:
		return []string{"ana", "bruno", "carla"}
	case 20:
		return []string{"davi"}
	}
	return nil
}

func TestBeginReplySetsProtectedPrefix(t *testing.T) {
	c := NewComposer(fakeThreads{})
	if !c.BeginReply(11) {
		t.Fatal("BeginReply(11) = false, want true")
	}
	if got := c.Prefix(); got != "@bruno " {
		t.Errorf("Prefix() = %q, want %q", got, "@bruno ")
	}
	if got := c.Draft(); got != "@bruno " {
		t.Errorf("Draft() = %q, want the prefix pre-filled", got)
	}
	if id, ok := c.ReplyTo(); !ok || id != 11 {
		t.Errorf("ReplyTo() = %d,%v, want 11,true", id, ok)
	}
}

func TestBeginReplyUnknownTarget(t *testing.T) {
	c := NewComposer(fakeThreads{})
	if c.BeginReply(999) {
		t.Error("BeginReply(999) = true, want false")
	}
}

func TestSuggestionsScopedToThread(t *testing.T) {
	c := NewComposer(fakeThreads{})
	c.BeginReply(11) // replying to bruno, inside ana's thread

	c.SetDraft("@bruno concordo, veja @")
	if !c.Showing() {
		t.Fatal("Showing() = false, want overlay visible")
	}
	// Everyone in the thread except bruno, who is already being replied to.
	want := []string{"ana", "carla"}
	if !reflect.DeepEqual(c.Suggestions(), want) {
		t.Errorf("Suggestions() = %v, want %v", c.Suggestions(), want)
	}
}

func TestSuggestionsFilterByPartial(t *testing.T) {
	c := NewComposer(fakeThreads{})
	c.BeginReply(11)

	c.SetDraft("@bruno veja @ca")
	if got := c.Query(); got != "ca" {
		t.Errorf("Query() = %q, want %q", got, "ca")
	}
	want := []string{"carla"}
	if !reflect.DeepEqual(c.Suggestions(), want) {
		t.Errorf("Suggestions() = %v, want %v", c.Suggestions(), want)
	}
}

func TestOverlayShownEvenWithNoCandidates(t *testing.T) {
	c := NewComposer(fakeThreads{})
	c.BeginReply(11)

	c.SetDraft("@bruno veja @zzz")
	if !c.Showing() {
		t.Error("Showing() = false, want true even with an empty candidate list")
	}
	if len(c.Suggestions()) != 0 {
		t.Errorf("Suggestions() = %v, want empty", c.Suggestions())
	}
}

func TestNoTokenHidesOverlay(t *testing.T) {
	c := NewComposer(fakeThreads{})
	c.BeginReply(11)

	c.SetDraft("@bruno veja @ca")
	c.SetDraft("@bruno veja carla")
	if c.Showing() {
		t.Error("Showing() = true after the token disappeared, want false")
	}
}

func TestTokenMustFollowWhitespace(t *testing.T) {
	c := NewComposer(fakeThreads{})
	c.BeginReply(11)

	c.SetDraft("@bruno email@ca")
	if c.Showing() {
		t.Error("an email-like @ in the middle of a word must not open the overlay")
	}
}

func TestNoSuggestionsOutsideReply(t *testing.T) {
	c := NewComposer(fakeThreads{})
	c.SetDraft("olá @a")
	if !c.Showing() {
		t.Fatal("Showing() = false, want true (token detected)")
	}
	if len(c.Suggestions()) != 0 {
		t.Errorf("Suggestions() = %v, want empty without a reply target", c.Suggestions())
	}
}

func TestAcceptReplacesTrailingToken(t *testing.T) {
	c := NewComposer(fakeThreads{})
	c.BeginReply(11)

	c.SetDraft("@bruno veja @ca")
	c.Accept("carla")
	if got := c.Draft(); got != "@bruno veja carla " {
		t.Errorf("Draft() = %q, want %q", got, "@bruno veja carla ")
	}
	if c.Showing() {
		t.Error("Showing() = true after Accept, want false")
	}
}

func TestBackspaceIntoPrefixCancelsReply(t *testing.T) {
	c := NewComposer(fakeThreads{})
	c.BeginReply(11)
	c.SetDraft("@bruno ")

	if !c.Backspace(7) { // caret right at the end of "@bruno "
		t.Fatal("Backspace at the prefix boundary must cancel the reply")
	}
	if _, ok := c.ReplyTo(); ok {
		t.Error("ReplyTo() still set after cancel")
	}
	if c.Draft() != "" || c.Prefix() != "" {
		t.Errorf("draft=%q prefix=%q after cancel, want both empty", c.Draft(), c.Prefix())
	}
}

func TestBackspacePastPrefixIsOrdinary(t *testing.T) {
	c := NewComposer(fakeThreads{})
	c.BeginReply(11)
	c.SetDraft("@bruno ok")

	if c.Backspace(9) {
		t.Error("Backspace beyond the prefix must not be suppressed")
	}
	if _, ok := c.ReplyTo(); !ok {
		t.Error("reply state must survive an ordinary backspace")
	}
}

func TestBackspaceWithoutReplyIsOrdinary(t *testing.T) {
	c := NewComposer(fakeThreads{})
	c.SetDraft("texto livre")
	if c.Backspace(3) {
		t.Error("Backspace without a reply target must never be suppressed")
	}
}

func TestCancelReplyClearsEverything(t *testing.T) {
	c := NewComposer(fakeThreads{})
	c.BeginReply(11)
	c.SetDraft("@bruno veja @ca")

	c.CancelReply()
	if _, ok := c.ReplyTo(); ok {
		t.Error("ReplyTo() still set")
	}
	if c.Draft() != "" || c.Prefix() != "" || c.Showing() {
		t.Errorf("state not fully cleared: draft=%q prefix=%q showing=%v",
			c.Draft(), c.Prefix(), c.Showing())
	}
}
