package config

const (
	chatURLVar       = "CHAT_URL"
	streamURLVar     = "CHAT_STREAM_URL"
	terminatorVar    = "CHAT_TERMINATOR"
	modeVar          = "CHAT_MODE"
	chunkSizeVar     = "CHAT_CHUNK_SIZE"
	ModeStream       = "stream"
	ModeRequest      = "request"
	defaultChatURL   = "http://localhost:8000/chat"
	defaultStreamURL = "ws://localhost:8000/ws"
)

type ChatConfig interface {
	GetChatURL() string
	GetStreamURL() string
	GetTerminator() string
	GetMode() string
	GetChunkSize() int
}

type ChatFile struct {
	URL        string `yaml:"url"`
	StreamURL  string `yaml:"stream_url"`
	Terminator string `yaml:"terminator"`
	Mode       string `yaml:"mode"`
	ChunkSize  int    `yaml:"chunk_size"`
}

type Chat struct {
	file *ChatFile
}

var _ ChatConfig = Chat{}

func (c Chat) GetChatURL() string {
	return GetEnv(chatURLVar, firstNonEmpty(c.file.URL, defaultChatURL))
}

func (c Chat) GetStreamURL() string {
	return GetEnv(streamURLVar, firstNonEmpty(c.file.StreamURL, defaultStreamURL))
}

func (c Chat) GetTerminator() string {
	return GetEnv(terminatorVar, firstNonEmpty(c.file.Terminator, "[END]"))
}

// GetMode returns ModeStream or ModeRequest.
func (c Chat) GetMode() string {
	if GetEnv(modeVar, c.file.Mode) == ModeRequest {
		return ModeRequest
	}
	return ModeStream
}

// GetChunkSize is the number of runes per streamed frame the server sends.
func (c Chat) GetChunkSize() int {
	fallback := c.file.ChunkSize
	if fallback <= 0 {
		fallback = 4
	}
	return GetEnvInt(chunkSizeVar, fallback)
}
