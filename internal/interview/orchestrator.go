package interview

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hireloop/ai-interviewer/internal/ai"
	"github.com/hireloop/ai-interviewer/internal/store/redisstore"
)

// Directory resolves the opaque candidate/vacancy references into the
// context the oracle needs. A (nil, nil) return means the id does not
// exist.
type Directory interface {
	CandidateContext(ctx context.Context, candidateID string) (*ai.CandidateContext, error)
	VacancyContext(ctx context.Context, vacancyID string) (*ai.VacancyContext, error)
}

// SnapshotCache is the ephemeral fast path for reconnects. All methods
// are best-effort: a cache failure never fails a turn, a miss falls
// back to the durable record.
type SnapshotCache interface {
	SaveSnapshot(ctx context.Context, id string, snap redisstore.Snapshot) error
	GetSnapshot(ctx context.Context, id string) (*redisstore.Snapshot, error)
}

// IDFunc mints new session ids.
type IDFunc func() (string, error)

type EventType string

const (
	EventMessage     EventType = "message"
	EventStageChange EventType = "stage_change"
	EventCompleted   EventType = "interview_complete"
	EventAborted     EventType = "interview_aborted"
)

// Event is one server-to-client push produced by a turn, in delivery
// order.
type Event struct {
	Type       EventType
	Message    *Message
	Stage      Stage
	FinalScore *float64
	Summary    *EvaluationSummary
}

const (
	greetingText = "Hello! Welcome to your interview. Let's begin!"

	// Sent when the oracle stays unavailable after retries: the session
	// remains live, nothing is scored, the candidate is asked to repeat.
	apologyText = "I'm sorry, I'm having trouble processing your answer right now. Could you please repeat that?"

	fallbackQuestionText = "Let's continue. Could you tell me more?"
)

// Orchestrator owns session lifecycles. All state-affecting operations
// on one session are serialized: an in-process mutex per session id,
// backed by the optimistic turn counter on the interview row so the
// guarantee survives multiple instances.
type Orchestrator struct {
	repo    *Repo
	dir     Directory
	oracle  ai.Provider
	cache   SnapshotCache
	weights map[Category]float64
	newID   IDFunc
	log     *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOrchestrator(repo *Repo, dir Directory, oracle ai.Provider, cache SnapshotCache, weights map[Category]float64, newID IDFunc, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		repo:    repo,
		dir:     dir,
		oracle:  oracle,
		cache:   cache,
		weights: weights,
		newID:   newID,
		log:     log,
		locks:   make(map[string]*sync.Mutex),
	}
}

// sessionLock returns the per-session critical section. Entries are
// cheap; they live for the process lifetime.
func (o *Orchestrator) sessionLock(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[id]
	if !ok {
		l = &sync.Mutex{}
		o.locks[id] = l
	}
	return l
}

// Create starts a new pending session after both references resolve.
func (o *Orchestrator) Create(ctx context.Context, candidateID, vacancyID string) (*Interview, error) {
	cand, err := o.dir.CandidateContext(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	vac, err := o.dir.VacancyContext(ctx, vacancyID)
	if err != nil {
		return nil, err
	}
	if cand == nil || vac == nil {
		return nil, ErrInvalidReference
	}

	id, err := o.newID()
	if err != nil {
		return nil, err
	}

	iv := &Interview{
		ID:           id,
		CandidateID:  candidateID,
		VacancyID:    vacancyID,
		Status:       StatusPending,
		CurrentStage: StageResumeFit,
		StartedAt:    time.Now().UTC(),
	}
	if err := o.repo.CreateInterview(ctx, iv); err != nil {
		return nil, err
	}
	o.saveSnapshot(ctx, iv)
	return iv, nil
}

// Open attaches a live connection. A pending session transitions to
// in_progress and gets its opening bot messages; an in_progress session
// resumes silently (the client refetches the persisted transcript).
func (o *Orchestrator) Open(ctx context.Context, id string) ([]Event, error) {
	l := o.sessionLock(id)
	l.Lock()
	defer l.Unlock()

	// Terminal is final, so a terminal snapshot can reject the reconnect
	// without touching the database.
	if o.cachedTerminal(ctx, id) {
		return nil, ErrAlreadyClosed
	}

	iv, err := o.repo.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv.Status.Terminal() {
		return nil, ErrAlreadyClosed
	}
	if iv.Status == StatusInProgress {
		return nil, nil
	}

	iv.Status = StatusInProgress
	if err := o.repo.UpdateInterviewCAS(ctx, iv); err != nil {
		return nil, err
	}

	events := []Event{}
	greeting := &Message{
		InterviewID: id,
		Sender:      SenderBot,
		Stage:       iv.CurrentStage,
		MessageType: MessageSystem,
		Message:     greetingText,
	}
	if err := o.repo.AppendMessage(ctx, greeting); err != nil {
		return nil, err
	}
	events = append(events, Event{Type: EventMessage, Message: greeting, Stage: iv.CurrentStage})

	question := o.askOpeningQuestion(ctx, iv, nil)
	if err := o.repo.AppendMessage(ctx, question); err != nil {
		return nil, err
	}
	events = append(events, Event{Type: EventMessage, Message: question, Stage: iv.CurrentStage})

	o.saveSnapshot(ctx, iv)
	return events, nil
}

// Submit runs one candidate turn end to end. clientKey is the optional
// idempotency key carried by the inbound frame; a duplicate submit
// re-emits the latest bot message without touching session state.
func (o *Orchestrator) Submit(ctx context.Context, id, text, clientKey string) ([]Event, error) {
	l := o.sessionLock(id)
	l.Lock()
	defer l.Unlock()

	if o.cachedTerminal(ctx, id) {
		return nil, ErrSessionClosed
	}

	iv, err := o.repo.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv.Status.Terminal() {
		return nil, ErrSessionClosed
	}

	candidateMsg := &Message{
		InterviewID: id,
		Sender:      SenderCandidate,
		Stage:       iv.CurrentStage,
		MessageType: MessageAnswer,
		Message:     text,
	}
	if clientKey != "" {
		candidateMsg.IdempotencyKey = &clientKey
	}
	_, created, err := o.repo.InsertCandidateMessageOrGetExisting(ctx, candidateMsg)
	if err != nil {
		return nil, err
	}
	if !created {
		// Client retry after a dropped ack: replay the reply it missed.
		o.log.Debug("duplicate candidate message", zap.String("interview_id", id))
		last, err := o.repo.LastBotMessage(ctx, id)
		if err != nil || last == nil {
			return nil, err
		}
		return []Event{{Type: EventMessage, Message: last, Stage: last.Stage}}, nil
	}

	// The candidate entry is durable now; conflicts below retry the
	// read-evaluate-write portion of the turn only.
	events, err := o.runTurn(ctx, id)
	if errors.Is(err, ErrStoreConflict) {
		o.log.Warn("turn conflict, retrying", zap.String("interview_id", id))
		events, err = o.runTurn(ctx, id)
	}
	return events, err
}

func (o *Orchestrator) runTurn(ctx context.Context, id string) ([]Event, error) {
	iv, err := o.repo.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv.Status.Terminal() {
		return nil, ErrSessionClosed
	}

	req, err := o.buildRequest(ctx, iv)
	if err != nil {
		return nil, err
	}

	out, err := o.oracle.Invoke(ctx, req)
	if err != nil {
		// Recoverable: keep the stage, apologize, let the candidate retry.
		o.log.Error("oracle failed, degrading to stay",
			zap.String("interview_id", id), zap.Error(err))
		return o.appendReply(ctx, iv, apologyText, MessageQuestion, false)
	}

	tr, err := EvaluateTransition(iv.CurrentStage, out)
	if err != nil {
		o.log.Error("oracle outcome rejected",
			zap.String("interview_id", id), zap.Error(err))
		return o.appendReply(ctx, iv, apologyText, MessageQuestion, false)
	}

	switch tr.Kind {
	case TransitionStay:
		return o.appendReply(ctx, iv, out.Reply, MessageQuestion, true)
	case TransitionAdvance:
		return o.advance(ctx, iv, out, tr)
	case TransitionConclude:
		return o.conclude(ctx, iv, out, tr)
	default: // TransitionAbort
		return o.abort(ctx, iv, out, tr)
	}
}

func (o *Orchestrator) advance(ctx context.Context, iv *Interview, out *ai.Outcome, tr Transition) ([]Event, error) {
	fromStage := iv.CurrentStage

	if err := o.recordScore(ctx, iv.ID, fromStage, tr.Score, out.Explanation); err != nil {
		return nil, err
	}

	iv.CurrentStage = tr.NextStage
	if err := o.repo.UpdateInterviewCAS(ctx, iv); err != nil {
		return nil, err
	}
	o.saveSnapshot(ctx, iv)

	events := []Event{}

	reply := &Message{
		InterviewID: iv.ID,
		Sender:      SenderBot,
		Stage:       fromStage,
		MessageType: MessageQuestion,
		Message:     out.Reply,
		AIGenerated: true,
	}
	if err := o.repo.AppendMessage(ctx, reply); err != nil {
		return nil, err
	}
	events = append(events, Event{Type: EventMessage, Message: reply, Stage: fromStage})

	marker := &Message{
		InterviewID: iv.ID,
		Sender:      SenderBot,
		Stage:       tr.NextStage,
		MessageType: MessageSystem,
		Message:     "Stage changed: " + string(tr.NextStage),
	}
	if err := o.repo.AppendMessage(ctx, marker); err != nil {
		return nil, err
	}
	events = append(events, Event{Type: EventStageChange, Message: marker, Stage: tr.NextStage})

	question := o.askOpeningQuestion(ctx, iv, nil)
	if err := o.repo.AppendMessage(ctx, question); err != nil {
		return nil, err
	}
	events = append(events, Event{Type: EventMessage, Message: question, Stage: tr.NextStage})

	return events, nil
}

func (o *Orchestrator) conclude(ctx context.Context, iv *Interview, out *ai.Outcome, tr Transition) ([]Event, error) {
	if err := o.recordScore(ctx, iv.ID, iv.CurrentStage, tr.Score, out.Explanation); err != nil {
		return nil, err
	}

	scores, err := o.repo.ListScores(ctx, iv.ID)
	if err != nil {
		return nil, err
	}
	// recordScore guarantees at least the current stage is present, so
	// aggregation cannot come up empty here.
	summary, err := Aggregate(scores, out.Confidence)
	if err != nil {
		return nil, err
	}
	summary.InterviewID = iv.ID
	if err := o.repo.CreateSummary(ctx, summary); err != nil {
		return nil, err
	}

	events, err := o.terminate(ctx, iv, StatusCompleted, &summary.OverallScore, out.Reply)
	if err != nil {
		return nil, err
	}
	events = append(events, Event{
		Type:       EventCompleted,
		Stage:      StageFinished,
		FinalScore: iv.FinalScore,
		Summary:    summary,
	})
	return events, nil
}

// abort handles a disqualifying conclude from a non-final stage.
// Present categories form a partial summary, missing ones carry no
// weight, and final_score stays unset because the session never
// completed.
func (o *Orchestrator) abort(ctx context.Context, iv *Interview, out *ai.Outcome, tr Transition) ([]Event, error) {
	if err := o.recordScore(ctx, iv.ID, iv.CurrentStage, tr.Score, out.Explanation); err != nil {
		return nil, err
	}

	scores, err := o.repo.ListScores(ctx, iv.ID)
	if err != nil {
		return nil, err
	}

	// The disqualifying stage was just scored, so the partial aggregate
	// always has at least one category.
	summary, err := Aggregate(scores, out.Confidence)
	if err != nil {
		return nil, err
	}
	summary.InterviewID = iv.ID
	if err := o.repo.CreateSummary(ctx, summary); err != nil {
		return nil, err
	}

	events, err := o.terminate(ctx, iv, StatusAborted, nil, out.Reply)
	if err != nil {
		return nil, err
	}
	events = append(events, Event{
		Type:    EventAborted,
		Stage:   StageFinished,
		Summary: summary,
	})
	return events, nil
}

// terminate moves the session to its terminal state and appends the
// closing bot message.
func (o *Orchestrator) terminate(ctx context.Context, iv *Interview, status Status, finalScore *float64, reply string) ([]Event, error) {
	now := time.Now().UTC()
	iv.Status = status
	iv.CurrentStage = StageFinished
	iv.FinalScore = finalScore
	iv.EndedAt = &now
	if err := o.repo.UpdateInterviewCAS(ctx, iv); err != nil {
		return nil, err
	}
	o.saveSnapshot(ctx, iv)

	msg := &Message{
		InterviewID: iv.ID,
		Sender:      SenderBot,
		Stage:       StageFinished,
		MessageType: MessageSystem,
		Message:     reply,
		AIGenerated: true,
	}
	if err := o.repo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return []Event{{Type: EventMessage, Message: msg, Stage: StageFinished}}, nil
}

// Close is called on abnormal disconnect before completion. The session
// deliberately stays in_progress so a reconnect resumes mid-stage from
// the persisted transcript.
func (o *Orchestrator) Close(ctx context.Context, id, reason string) {
	o.log.Info("connection closed",
		zap.String("interview_id", id), zap.String("reason", reason))
}

// EvaluationData is the full persisted view of a session, valid at any
// stage.
type EvaluationData struct {
	Interview *Interview         `json:"interview"`
	Scores    []EvaluationScore  `json:"evaluation_scores"`
	Summary   *EvaluationSummary `json:"evaluation_summary"`
	Messages  []Message          `json:"chat_messages"`
}

func (o *Orchestrator) Evaluation(ctx context.Context, id string) (*EvaluationData, error) {
	iv, err := o.repo.GetInterview(ctx, id)
	if err != nil {
		return nil, err
	}
	scores, err := o.repo.ListScores(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := o.repo.GetSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	msgs, err := o.repo.ListMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &EvaluationData{Interview: iv, Scores: scores, Summary: summary, Messages: msgs}, nil
}

func (o *Orchestrator) Get(ctx context.Context, id string) (*Interview, error) {
	return o.repo.GetInterview(ctx, id)
}

// recordScore writes the stage score once. A duplicate on a conflict
// retry means the previous attempt already recorded it, which is fine.
func (o *Orchestrator) recordScore(ctx context.Context, interviewID string, stage Stage, score float64, explanation string) error {
	cat, ok := CategoryForStage(stage)
	if !ok {
		return ErrDuplicateScore
	}
	weight := 1.0
	if w, found := o.weights[cat]; found {
		weight = w
	}
	s := &EvaluationScore{
		InterviewID: interviewID,
		Category:    cat,
		Score:       score,
		Weight:      weight,
	}
	if explanation != "" {
		s.Explanation = &explanation
	}
	err := o.repo.CreateScore(ctx, s)
	if errors.Is(err, ErrDuplicateScore) {
		return nil
	}
	return err
}

func (o *Orchestrator) buildRequest(ctx context.Context, iv *Interview) (ai.Request, error) {
	msgs, err := o.repo.ListMessages(ctx, iv.ID)
	if err != nil {
		return ai.Request{}, err
	}

	req := ai.Request{
		Stage:      string(iv.CurrentStage),
		Transcript: toTranscript(msgs),
	}
	if cand, err := o.dir.CandidateContext(ctx, iv.CandidateID); err == nil && cand != nil {
		req.Candidate = *cand
	}
	if vac, err := o.dir.VacancyContext(ctx, iv.VacancyID); err == nil && vac != nil {
		req.Vacancy = *vac
	}
	return req, nil
}

func toTranscript(msgs []Message) []ai.Message {
	out := make([]ai.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ai.Message{
			Sender: string(m.Sender),
			Stage:  string(m.Stage),
			Text:   m.Message,
		})
	}
	return out
}

// askOpeningQuestion gets the first question for the session's current
// stage. Degrades to a generic prompt when the oracle is down; the next
// turn will recover.
func (o *Orchestrator) askOpeningQuestion(ctx context.Context, iv *Interview, _ *ai.Outcome) *Message {
	text := fallbackQuestionText
	aiGenerated := false

	if req, err := o.buildRequest(ctx, iv); err == nil {
		if out, err := o.oracle.Invoke(ctx, req); err == nil && out.Reply != "" {
			text = out.Reply
			aiGenerated = true
		} else if err != nil {
			o.log.Warn("opening question fallback",
				zap.String("interview_id", iv.ID), zap.Error(err))
		}
	}

	return &Message{
		InterviewID: iv.ID,
		Sender:      SenderBot,
		Stage:       iv.CurrentStage,
		MessageType: MessageQuestion,
		Message:     text,
		AIGenerated: aiGenerated,
	}
}

func (o *Orchestrator) appendReply(ctx context.Context, iv *Interview, text string, mt MessageType, aiGenerated bool) ([]Event, error) {
	m := &Message{
		InterviewID: iv.ID,
		Sender:      SenderBot,
		Stage:       iv.CurrentStage,
		MessageType: mt,
		Message:     text,
		AIGenerated: aiGenerated,
	}
	if err := o.repo.AppendMessage(ctx, m); err != nil {
		return nil, err
	}
	return []Event{{Type: EventMessage, Message: m, Stage: iv.CurrentStage}}, nil
}

// cachedTerminal reports whether the snapshot cache already knows the
// session reached a terminal state.
func (o *Orchestrator) cachedTerminal(ctx context.Context, id string) bool {
	if o.cache == nil {
		return false
	}
	snap, err := o.cache.GetSnapshot(ctx, id)
	if err != nil || snap == nil {
		return false
	}
	return Status(snap.Status).Terminal()
}

func (o *Orchestrator) saveSnapshot(ctx context.Context, iv *Interview) {
	if o.cache == nil {
		return
	}
	snap := redisstore.Snapshot{
		Status: string(iv.Status),
		Stage:  string(iv.CurrentStage),
		Turn:   iv.Turn,
	}
	if err := o.cache.SaveSnapshot(ctx, iv.ID, snap); err != nil {
		o.log.Warn("snapshot save failed",
			zap.String("interview_id", iv.ID), zap.Error(err))
	}
}
