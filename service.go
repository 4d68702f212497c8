package conduit

import (
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/conduit/model"
	"github.com/viant/conduit/policy"
	"github.com/viant/conduit/runtime/correlation"
	"github.com/viant/conduit/runtime/execution"
	"github.com/viant/conduit/service/clients"
	"github.com/viant/conduit/service/dao"
	cmemory "github.com/viant/conduit/service/dao/call/memory"
	ememory "github.com/viant/conduit/service/dao/execution/memory"
	lmemory "github.com/viant/conduit/service/dao/msglog/memory"
	"github.com/viant/conduit/service/dao/route"
	"github.com/viant/conduit/service/dao/workflow"
	"github.com/viant/conduit/service/directory"
	"github.com/viant/conduit/service/event"
	"github.com/viant/conduit/service/executor"
	"github.com/viant/conduit/service/invoker"
	"github.com/viant/conduit/service/messaging"
	mmemory "github.com/viant/conduit/service/messaging/memory"
	"github.com/viant/conduit/service/meta"
	"github.com/viant/conduit/service/orchestrator"
	"github.com/viant/conduit/service/processor"
	"github.com/viant/conduit/service/projector"
	"github.com/viant/conduit/service/router"
	"github.com/viant/conduit/service/transform"
	"github.com/viant/conduit/service/transport"
)

// Service assembles the integration bus: it wires the router, orchestrator,
// processor and invoker together with their stores and queues and exposes
// them through a Runtime facade.
type Service struct {
	config        *Config
	runtime       *Runtime
	metaService   *meta.Service
	metaBaseURL   string
	metaFsOptions []storage.Option

	transport    transport.Client
	retry        *policy.Retry
	events       *event.Service
	transforms   *transform.Registry
	executionDAO dao.Service[string, execution.Execution]
	callDAO      dao.Service[string, model.ServiceCall]
	msglogDAO    dao.Service[string, model.MessageLog]
	kickoff      messaging.Queue[processor.Task]
	dispatch     messaging.Queue[model.Message]
}

// New creates a fully wired engine; every collaborator not supplied through
// an option falls back to its in-memory default.
func New(options ...Option) *Service {
	ret := &Service{config: DefaultConfig(), runtime: &Runtime{}}
	ret.init(options)
	return ret
}

// Runtime returns the engine facade.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

func (s *Service) init(options []Option) {
	for _, option := range options {
		option(s)
	}
	r := s.runtime
	if s.config == nil {
		s.config = DefaultConfig()
	}
	s.config.applyDefaults()
	if err := s.config.Validate(); err != nil {
		r.initErr = fmt.Errorf("invalid configuration: %w", err)
		return
	}
	s.ensureBaseSetup()

	r.events = s.events
	r.executionDAO = s.executionDAO
	r.callDAO = s.callDAO
	r.msglogDAO = s.msglogDAO
	r.dispatch = s.dispatch
	r.workflows = workflow.New(workflow.WithMetaService(s.metaService))
	r.routes = route.New(route.WithMetaService(s.metaService))
	r.directory = directory.New()
	r.clients = clients.New()
	r.transforms = s.transforms
	r.correlations = correlation.NewIndex()

	r.invoker = invoker.New(s.transport, s.callDAO, r.directory, r.clients,
		projector.New(), s.events, s.retry,
		invoker.WithDefaultTimeout(time.Duration(s.config.Invoker.TimeoutMs)*time.Millisecond))
	stepExecutor := executor.New(r.invoker)

	var err error
	r.processor, err = processor.New(
		processor.WithExecutionDAO(s.executionDAO),
		processor.WithWorkflowDAO(r.workflows),
		processor.WithQueue(s.kickoff),
		processor.WithExecutor(stepExecutor),
		processor.WithEventService(s.events),
		processor.WithCorrelationIndex(r.correlations),
		processor.WithWorkers(s.config.Processor.WorkerCount))
	if err != nil {
		r.initErr = err
		return
	}

	r.router = router.New(r.routes, s.transforms, s.dispatch, s.msglogDAO, s.events)

	r.orchestrator, err = orchestrator.New(
		orchestrator.WithWorkflowDAO(r.workflows),
		orchestrator.WithExecutionDAO(s.executionDAO),
		orchestrator.WithKickoffQueue(s.kickoff),
		orchestrator.WithDispatchQueue(s.dispatch),
		orchestrator.WithDirectory(r.directory),
		orchestrator.WithCorrelationIndex(r.correlations),
		orchestrator.WithEventService(s.events))
	if err != nil {
		r.initErr = err
	}
}

func (s *Service) ensureBaseSetup() {
	if s.metaService == nil {
		s.metaService = meta.New(afs.New(), s.metaBaseURL, s.metaFsOptions...)
	}
	if s.transport == nil {
		s.transport = transport.NewHTTPClient(time.Duration(s.config.Invoker.TimeoutMs) * time.Millisecond)
	}
	if s.retry == nil {
		s.retry = policy.Default()
	}
	if s.events == nil {
		s.events = event.New()
	}
	if s.transforms == nil {
		s.transforms = transform.NewRegistry()
	}
	if s.executionDAO == nil {
		s.executionDAO = ememory.New()
	}
	if s.callDAO == nil {
		s.callDAO = cmemory.New()
	}
	if s.msglogDAO == nil {
		s.msglogDAO = lmemory.New()
	}
	if s.kickoff == nil {
		s.kickoff = mmemory.NewQueue[processor.Task](mmemory.DefaultConfig())
	}
	if s.dispatch == nil {
		s.dispatch = mmemory.NewQueue[model.Message](mmemory.DefaultConfig())
	}
}
