package eventstream

import "errors"

// ErrNilConversationEvent indicates a nil event payload was provided to a publisher.
var ErrNilConversationEvent = errors.New("nil conversation event")
