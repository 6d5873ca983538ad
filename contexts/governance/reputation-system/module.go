package reputationsystem

import (
	"errors"
	"log/slog"
	"time"

	httpadapter "repledger/contexts/governance/reputation-system/adapters/http"
	"repledger/contexts/governance/reputation-system/adapters/memory"
	"repledger/contexts/governance/reputation-system/application"
	"repledger/contexts/governance/reputation-system/application/commands"
	"repledger/contexts/governance/reputation-system/application/queries"
	"repledger/contexts/governance/reputation-system/domain/entities"
	"repledger/contexts/governance/reputation-system/ports"
)

// SystemConfig fixes the construction-time identity and policy of one
// reputation system instance.
type SystemConfig struct {
	// SystemName is the logical name whose keccak hash namespaces allowance
	// lookups on the external ledger.
	SystemName string
	// SystemAddress is this system's caller identity on the external ledger;
	// its keccak hash is the fixed global reputation scope.
	SystemAddress string
	// Root is the single identity allowed to install the registrar and to
	// run admin overrides. Root may never act as registrar.
	Root string
	// SourceService tags emitted audit envelopes.
	SourceService string

	// Decay extension point. The baseline two-tier model stores but does not
	// apply these; construction still validates them so a future decay
	// variant cannot be wired with out-of-range weights.
	UpdateInterval    time.Duration
	PrevVotesDiscount uint64
	NewVotesDiscount  uint64
}

func (c SystemConfig) Validate() error {
	if c.SystemName == "" || c.SystemAddress == "" || c.Root == "" {
		return errors.New("system name, system address and root identity are required")
	}
	if c.UpdateInterval < 0 {
		return errors.New("update interval must not be negative")
	}
	if c.PrevVotesDiscount > 100 || c.NewVotesDiscount > 100 {
		return errors.New("discount weights must be percentages between 0 and 100")
	}
	if c.PrevVotesDiscount == 0 && c.NewVotesDiscount == 0 {
		return errors.New("at least one discount weight must be positive")
	}
	return nil
}

type Module struct {
	Handler httpadapter.Handler

	// NamespaceHash and GlobalScopeID are derived once from SystemConfig.
	NamespaceHash string
	GlobalScopeID string

	// Store and Ledger are populated by NewInMemoryModule only.
	Store  *memory.Store
	Ledger *memory.Ledger
}

type Dependencies struct {
	Repo   ports.Repository
	Ledger ports.VoteAuthorizationLedger
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Config SystemConfig
	Logger *slog.Logger
}

func NewModule(deps Dependencies) (Module, error) {
	if err := deps.Config.Validate(); err != nil {
		return Module{}, err
	}

	namespaceHash := entities.HashID(deps.Config.SystemName)
	globalScopeID := entities.GlobalScopeID(deps.Config.SystemAddress)
	gateway := application.Gateway{
		Ledger:                 deps.Ledger,
		SystemAddress:          deps.Config.SystemAddress,
		NamespaceHash:          namespaceHash,
		RegisterCapabilityHash: entities.HashID(entities.CapabilityRegister),
	}

	registryUseCase := commands.RegistryUseCase{
		Repo:    deps.Repo,
		Gateway: gateway,
		Clock:   deps.Clock,
		Root:    deps.Config.Root,
		Logger:  deps.Logger,
	}
	voteUseCase := commands.VoteUseCase{
		Repo:          deps.Repo,
		Gateway:       gateway,
		Clock:         deps.Clock,
		GlobalScopeID: globalScopeID,
		Logger:        deps.Logger,
	}
	batchUseCase := commands.BatchUseCase{
		Repo:          deps.Repo,
		Clock:         deps.Clock,
		Root:          deps.Config.Root,
		GlobalScopeID: globalScopeID,
		Logger:        deps.Logger,
	}
	adminUseCase := commands.AdminUseCase{
		Repo:          deps.Repo,
		Clock:         deps.Clock,
		IDGen:         deps.IDGen,
		Root:          deps.Config.Root,
		SourceService: deps.Config.SourceService,
		Logger:        deps.Logger,
	}
	reputationQueries := queries.ReputationQueries{
		Repo:    deps.Repo,
		Gateway: gateway,
	}

	return Module{
		Handler: httpadapter.Handler{
			Registry: registryUseCase,
			Votes:    voteUseCase,
			Batches:  batchUseCase,
			Admin:    adminUseCase,
			Queries:  reputationQueries,
			Logger:   deps.Logger,
		},
		NamespaceHash: namespaceHash,
		GlobalScopeID: globalScopeID,
	}, nil
}

// NewInMemoryModule wires the module against the memory repository and the
// in-process authorization ledger double.
func NewInMemoryModule(cfg SystemConfig, logger *slog.Logger) (Module, error) {
	store := memory.NewStore()
	ledger := memory.NewLedger()
	module, err := NewModule(Dependencies{
		Repo:   store,
		Ledger: ledger,
		Clock:  store,
		IDGen:  store,
		Config: cfg,
		Logger: logger,
	})
	if err != nil {
		return Module{}, err
	}
	module.Store = store
	module.Ledger = ledger
	return module, nil
}
