package chatclient

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry 는 transcript 한 줄이다. Greeting 은 서버에 저장되지 않는 인사말 표시용이다.
type Entry struct {
	Role     string
	Content  string
	Greeting bool
}

// Session 은 클라이언트 쪽 대화 상태다. 저장되지 않는다.
// ActiveID 가 nil 이면 다음 전송이 새 대화를 만든다.
type Session struct {
	ActiveID   *int64
	Transcript []Entry

	// unlisted 는 새 대화 요청이 실패 응답으로 id 를 받았고 아직 목록 갱신을 알리지 않았음을 뜻한다.
	unlisted bool
}

func (s *Session) reset(greeting string) {
	s.ActiveID = nil
	s.Transcript = nil
	s.unlisted = false
	if greeting != "" {
		s.Transcript = append(s.Transcript, Entry{Role: RoleAssistant, Content: greeting, Greeting: true})
	}
}

func (s *Session) adopt(id int64) {
	if id > 0 {
		s.ActiveID = &id
	}
}

// history 는 서버에 보낼 transcript 사본이다. 인사말도 포함한다.
func (s *Session) history() []Turn {
	out := make([]Turn, 0, len(s.Transcript))
	for _, e := range s.Transcript {
		out = append(out, Turn{Role: e.Role, Content: e.Content})
	}
	return out
}

// adoptFromFailure 는 실패 응답에 실린 id 를 받아들인다.
// 새 대화로 보낸 요청이었다면 다음 성공 때 목록 갱신을 알린다.
func (s *Session) adoptFromFailure(id int64, startedNew bool) {
	if id <= 0 {
		return
	}
	s.adopt(id)
	if startedNew {
		s.unlisted = true
	}
}

// takeRefresh 는 성공한 응답 뒤에 대화 목록을 다시 불러와야 하는지 돌려주고 표시를 지운다.
func (s *Session) takeRefresh(startedNew bool) bool {
	refresh := startedNew || s.unlisted
	s.unlisted = false
	return refresh
}

func (s Session) clone() Session {
	out := Session{Transcript: append([]Entry(nil), s.Transcript...), unlisted: s.unlisted}
	if s.ActiveID != nil {
		id := *s.ActiveID
		out.ActiveID = &id
	}
	return out
}
