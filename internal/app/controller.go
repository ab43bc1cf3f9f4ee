package app

import "sync"

// Controller owns the in-memory message list for the session currently on
// screen and keeps the SessionStore eventually consistent with it. The store
// is only written when the user switches away, deletes, or a submission
// commits; in between, divergence is tolerated for the in-flight request.
//
// The mutex exists because the submission pipeline runs on its own goroutine
// while the UI event loop reads; there is still only ever one writer per
// operation.
type Controller struct {
	store *SessionStore

	mu       sync.Mutex
	activeID string
	messages []Message
}

func NewController(store *SessionStore) *Controller {
	return &Controller{store: store}
}

// NewConversation commits the current conversation's derived title (if it has
// any messages) and opens a fresh empty session as the active one.
//
// The title is recomputed from the first in-memory message every time this
// path runs. The first-submission path in the pipeline writes the same value,
// so the repetition is observably harmless.
func (c *Controller) NewConversation() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeID != "" && len(c.messages) > 0 {
		c.store.UpdateTitle(c.activeID, TitleFor(c.messages[0].Content))
	}

	sess := c.store.Create()
	c.activeID = sess.ID
	c.messages = nil
	return sess
}

// SelectConversation switches the active session. Unsaved in-memory messages
// are committed under the previous active id first. An unknown id leaves
// everything untouched.
func (c *Controller) SelectConversation(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeID != "" && len(c.messages) > 0 {
		c.store.UpdateMessages(c.activeID, c.messages)
	}

	for _, sess := range c.store.Load() {
		if sess.ID == id {
			c.activeID = id
			c.messages = cloneMessages(sess.Messages)
			return
		}
	}
}

// DeleteConversation removes a session from the store. Deleting the active
// session discards its unsaved in-memory messages; that is what delete means.
func (c *Controller) DeleteConversation(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store.Delete(id)
	if id == c.activeID {
		c.activeID = ""
		c.messages = nil
	}
}

func (c *Controller) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID
}

// Messages returns a copy of the in-memory list.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneMessages(c.messages)
}

func (c *Controller) MessageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Append adds a message to the in-memory list. Only the submission pipeline
// and the streamer path call this; the controller never invents content.
func (c *Controller) Append(msg Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// ReplaceLastContent overwrites the content of the most recently appended
// message. The streamer uses this to grow the assistant placeholder in place.
func (c *Controller) ReplaceLastContent(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := len(c.messages); n > 0 {
		c.messages[n-1].Content = content
	}
}

// Sessions is a read-through to the store for the sidebar.
func (c *Controller) Sessions() []Session {
	return c.store.Load()
}
