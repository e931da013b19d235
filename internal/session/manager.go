// Package session owns the live shopping session state machine. All
// state lives in memory for the process lifetime; start and stop are
// fast lock-protected transitions that never wait on upstream calls.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/greenshelf/scorer/internal/analysis"
	"github.com/greenshelf/scorer/internal/announce"
	"github.com/greenshelf/scorer/pkg/logger"
	"github.com/greenshelf/scorer/pkg/models"
)

// State is the session lifecycle phase
type State string

const (
	StateIdle   State = "idle"
	StateActive State = "active"
)

var (
	// ErrNotActive rejects analysis outside an active session
	ErrNotActive = errors.New("no active session")
	// ErrAlreadyInProgress rejects a duplicate in-flight analysis for the same product
	ErrAlreadyInProgress = errors.New("analysis already in progress for this product")
	// ErrNoAnalysis rejects a quick alert before any analysis has completed
	ErrNoAnalysis = errors.New("no completed analysis in this session")
	// ErrUnknownAlertType rejects alert types other than price and sustainability
	ErrUnknownAlertType = errors.New("unknown alert type")
)

// LiveSession is the immutable identity of one active session
type LiveSession struct {
	ID            string    `json:"session_id"`
	StoreLocation string    `json:"store_location"`
	StartedAt     time.Time `json:"started_at"`
}

// Summary describes a finished session
type Summary struct {
	SessionID        string        `json:"session_id"`
	StoreLocation    string        `json:"store_location"`
	ProductsAnalyzed int           `json:"products_analyzed"`
	Duration         time.Duration `json:"duration"`
}

// Status is a read-only snapshot of the manager
type Status struct {
	State              State  `json:"state"`
	SessionID          string `json:"session_id,omitempty"`
	StoreLocation      string `json:"store_location,omitempty"`
	ActiveProductCount int    `json:"active_product_count"`
	LastProduct        string `json:"last_product,omitempty"`
}

// Analyzer runs the three-source pipeline for one product
type Analyzer interface {
	Analyze(ctx context.Context, query models.ProductQuery) *analysis.ProductAnalysis
}

// Manager is the single writer of session state. Product analyses fan
// out concurrently, but at most one analysis per normalized product name
// is in flight at a time.
type Manager struct {
	mu       sync.Mutex
	state    State
	session  *LiveSession
	inFlight map[string]struct{}
	analyzed int
	last     *analysis.ProductAnalysis

	analyzer Analyzer
	composer *announce.Composer
	speaker  *announce.Speaker
	bus      *Bus
	greet    bool
}

func NewManager(analyzer Analyzer, composer *announce.Composer, speaker *announce.Speaker, bus *Bus, greet bool) *Manager {
	return &Manager{
		state:    StateIdle,
		inFlight: make(map[string]struct{}),
		analyzer: analyzer,
		composer: composer,
		speaker:  speaker,
		bus:      bus,
		greet:    greet,
	}
}

// Start moves Idle to Active. Starting an already active session returns
// the current session unchanged. The welcome announcement is best-effort.
func (m *Manager) Start(ctx context.Context, storeLocation string) (*LiveSession, *models.Announcement) {
	m.mu.Lock()
	if m.state == StateActive {
		session := *m.session
		m.mu.Unlock()
		logger.Debug("start on active session is a no-op", zap.String("session_id", session.ID))
		return &session, nil
	}

	m.state = StateActive
	m.session = &LiveSession{
		ID:            uuid.New().String(),
		StoreLocation: storeLocation,
		StartedAt:     time.Now(),
	}
	m.analyzed = 0
	m.last = nil
	session := *m.session
	m.mu.Unlock()

	logger.Info("live session started",
		zap.String("session_id", session.ID),
		zap.String("store_location", storeLocation),
	)
	m.bus.Publish(Event{Type: EventSessionStateChanged, SessionID: session.ID, Payload: Status{State: StateActive, SessionID: session.ID, StoreLocation: storeLocation}})

	var welcome *models.Announcement
	if m.greet {
		ann := m.speaker.Speak(ctx, models.KindWelcome, m.composer.Welcome(storeLocation))
		welcome = &ann
	}
	return &session, welcome
}

// Stop moves Active to Idle and clears the product locks. Stopping an
// idle session is a no-op.
func (m *Manager) Stop(ctx context.Context) (*Summary, *models.Announcement) {
	m.mu.Lock()
	if m.state == StateIdle {
		m.mu.Unlock()
		logger.Debug("stop on idle session is a no-op")
		return nil, nil
	}

	summary := &Summary{
		SessionID:        m.session.ID,
		StoreLocation:    m.session.StoreLocation,
		ProductsAnalyzed: m.analyzed,
		Duration:         time.Since(m.session.StartedAt),
	}
	m.state = StateIdle
	m.session = nil
	m.last = nil
	m.inFlight = make(map[string]struct{})
	m.mu.Unlock()

	logger.Info("live session stopped",
		zap.String("session_id", summary.SessionID),
		zap.Int("products_analyzed", summary.ProductsAnalyzed),
		zap.Duration("duration", summary.Duration),
	)
	m.bus.Publish(Event{Type: EventSessionStateChanged, SessionID: summary.SessionID, Payload: Status{State: StateIdle}})

	var closing *models.Announcement
	if m.greet {
		ann := m.speaker.Speak(ctx, models.KindClosing, m.composer.Closing())
		closing = &ann
	}
	return summary, closing
}

// Analyze runs the full pipeline for one product under the session's
// per-product lock. It fails outward only for session state errors;
// upstream problems degrade inside the analysis result.
func (m *Manager) Analyze(ctx context.Context, query models.ProductQuery) (*analysis.ProductAnalysis, []models.Announcement, error) {
	identity := query.Identity()

	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return nil, nil, ErrNotActive
	}
	if _, busy := m.inFlight[identity]; busy {
		m.mu.Unlock()
		return nil, nil, ErrAlreadyInProgress
	}
	m.inFlight[identity] = struct{}{}
	sessionID := m.session.ID
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.inFlight, identity)
		m.mu.Unlock()
	}()

	result := m.analyzer.Analyze(ctx, query)

	announcements := m.announce(ctx, result)

	// commit only if the same session is still active; a stop during the
	// fan-out discards the result
	m.mu.Lock()
	if m.state != StateActive || m.session.ID != sessionID {
		m.mu.Unlock()
		logger.Warn("discarding analysis result for ended session",
			zap.String("product", query.Name),
			zap.String("session_id", sessionID),
		)
		return nil, nil, ErrNotActive
	}
	m.analyzed++
	m.last = result
	m.mu.Unlock()

	m.bus.Publish(Event{Type: EventAnalysisCompleted, SessionID: sessionID, Payload: result})
	return result, announcements, nil
}

func (m *Manager) announce(ctx context.Context, result *analysis.ProductAnalysis) []models.Announcement {
	var out []models.Announcement
	name := result.Query.Name

	if result.PriceComparison != nil {
		script := m.composer.PriceComparison(name, *result.PriceComparison, result.Score)
		out = append(out, m.speaker.Speak(ctx, models.KindPrice, script))
	}

	script := m.composer.SustainabilityBreakdown(name, result.Score)
	out = append(out, m.speaker.Speak(ctx, models.KindSustainability, script))
	return out
}

// QuickAlert produces an abbreviated announcement from the last committed
// analysis, bypassing the three-source fan-out.
func (m *Manager) QuickAlert(ctx context.Context, productName, alertType string) (*models.Announcement, error) {
	m.mu.Lock()
	if m.state != StateActive {
		m.mu.Unlock()
		return nil, ErrNotActive
	}
	last := m.last
	m.mu.Unlock()

	if last == nil {
		return nil, ErrNoAnalysis
	}

	var script string
	switch alertType {
	case "sustainability":
		script = m.composer.QuickSustainabilityAlert(productName, last.Score.Overall)
	case "price":
		if last.PriceComparison == nil {
			return nil, ErrNoAnalysis
		}
		script = m.composer.QuickPriceAlert(productName, *last.PriceComparison)
	default:
		return nil, ErrUnknownAlertType
	}

	ann := m.speaker.Speak(ctx, models.KindQuickAlert, script)
	return &ann, nil
}

// Status returns a read-only snapshot without blocking on any work
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := Status{State: m.state, ActiveProductCount: len(m.inFlight)}
	if m.session != nil {
		status.SessionID = m.session.ID
		status.StoreLocation = m.session.StoreLocation
	}
	if m.last != nil {
		status.LastProduct = m.last.Query.Name
	}
	return status
}
