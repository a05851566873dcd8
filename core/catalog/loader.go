package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.uber.org/zap"

	"building-cost/core/types"
	"building-cost/internal/errors"
	"building-cost/internal/logging"
)

//go:embed data/*.hcl
var embedded embed.FS

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the store built from the embedded catalog
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			defaultErr = errors.Internal("embedded catalog missing", err)
			return
		}
		defaultStore, defaultErr = Load(sub)
	})
	return defaultStore, defaultErr
}

// LoadDir loads the embedded catalog and overlays every *.hcl file in dir.
// Blocks in dir replace embedded blocks with the same labels.
func LoadDir(dir string) (*Store, error) {
	if dir == "" {
		return Default()
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Config(fmt.Sprintf("catalog directory %s", dir), err)
	}
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, errors.Internal("embedded catalog missing", err)
	}
	return Load(sub, os.DirFS(dir))
}

// Load parses every *.hcl file of each filesystem in order, merges them and
// validates the result. Parse and integrity errors are fatal.
func Load(sources ...fs.FS) (*Store, error) {
	l := &loader{
		parser:   hclparse.NewParser(),
		types:    make(map[string]buildingTypeBlock),
		builds:   make(map[string]buildingBlock),
		finishes: make(map[string]finishLevelBlock),
		classes:  make(map[string]projectClassBlock),
		mixed:    make(map[string]mixedUseBlock),
		scopes:   make(map[string]scopeProfileBlock),
		tiles:    make(map[string]tileProfileBlock),
		logger:   logging.Named("catalog"),
	}

	for _, src := range sources {
		files, err := fs.Glob(src, "*.hcl")
		if err != nil {
			return nil, errors.Config("listing catalog files", err)
		}
		sort.Strings(files)
		for _, name := range files {
			if err := l.parseFile(src, name); err != nil {
				return nil, err
			}
		}
	}

	store, err := l.build()
	if err != nil {
		return nil, err
	}

	warnings, errs := store.Validate(DefaultValidationRules())
	for _, w := range warnings {
		l.logger.Warn("catalog validation warning", zap.Error(w))
	}
	if len(errs) > 0 {
		for _, e := range errs {
			l.logger.Error("catalog validation error", zap.Error(e))
		}
		return nil, errors.Newf(errors.TypeConfig, "catalog has %d validation errors: %v", len(errs), errs[0])
	}

	l.logger.Debug("catalog loaded",
		zap.Int("building_configs", store.Count()),
		zap.Int("scope_profiles", len(store.scopeProfiles)),
		zap.Int("tile_profiles", len(store.tileProfiles)))
	return store, nil
}

type loader struct {
	parser   *hclparse.Parser
	types    map[string]buildingTypeBlock
	builds   map[string]buildingBlock
	finishes map[string]finishLevelBlock
	classes  map[string]projectClassBlock
	mixed    map[string]mixedUseBlock
	scopes   map[string]scopeProfileBlock
	tiles    map[string]tileProfileBlock
	logger   *zap.Logger
}

func (l *loader) parseFile(src fs.FS, name string) error {
	data, err := fs.ReadFile(src, name)
	if err != nil {
		return errors.Config(fmt.Sprintf("reading catalog file %s", name), err)
	}

	file, diags := l.parser.ParseHCL(data, path.Base(name))
	if diags.HasErrors() {
		return errors.Parsing(fmt.Sprintf("catalog file %s", name), diags)
	}

	var body fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &body); diags.HasErrors() {
		return errors.Parsing(fmt.Sprintf("catalog file %s", name), diags)
	}

	for _, b := range body.BuildingTypes {
		l.types[types.NormalizeKey(b.Type)] = b
	}
	for _, b := range body.Buildings {
		l.builds[types.NormalizeKey(b.Type)+"/"+types.NormalizeKey(b.Subtype)] = b
	}
	for _, b := range body.FinishLevels {
		l.finishes[types.NormalizeKey(b.Level)] = b
	}
	for _, b := range body.ProjectClasses {
		l.classes[types.NormalizeKey(b.Class)] = b
	}
	for _, b := range body.MixedUse {
		l.mixed[types.NormalizeKey(b.Component)] = b
	}
	for _, b := range body.ScopeProfiles {
		l.scopes[b.ID] = b
	}
	for _, b := range body.TileProfiles {
		l.tiles[b.ID] = b
	}

	l.logger.Debug("parsed catalog file", zap.String("file", name),
		zap.Int("buildings", len(body.Buildings)))
	return nil
}

func (l *loader) build() (*Store, error) {
	s := newStore()

	for key, b := range l.types {
		bt, err := types.ParseBuildingType(key)
		if err != nil {
			return nil, errors.Config(fmt.Sprintf("building_type %q", b.Type), err)
		}
		d := &TypeDefaults{
			Type:                bt,
			DefaultSubtype:      types.NormalizeKey(b.DefaultSubtype),
			MarginPct:           b.MarginPct,
			TIMultiplier:        b.TIMultiplier,
			EquipmentAsSoftCost: b.EquipmentAsSoftCost,
		}
		for _, pc := range b.ProjectClasses {
			class, err := types.ParseProjectClass(pc)
			if err != nil {
				return nil, errors.Config(fmt.Sprintf("building_type %q", b.Type), err)
			}
			d.ProjectClasses = append(d.ProjectClasses, class)
		}
		s.typeDefaults[bt] = d
		if b.CostClamp != nil {
			s.typeClamps[bt] = &CostClamp{Min: b.CostClamp.Min, Max: b.CostClamp.Max}
		}
	}

	for key, b := range l.builds {
		bt, err := types.ParseBuildingType(b.Type)
		if err != nil {
			return nil, errors.Config(fmt.Sprintf("building %q", key), err)
		}
		parent, ok := l.types[string(bt)]
		if !ok {
			return nil, errors.Newf(errors.TypeConfig, "building %q has no building_type block", key)
		}
		cfg, err := convertBuilding(bt, b, parent)
		if err != nil {
			return nil, err
		}
		if cfg.CostClamp == nil {
			cfg.CostClamp = s.typeClamps[bt]
		}
		if s.buildings[bt] == nil {
			s.buildings[bt] = make(map[string]*BuildingConfig)
		}
		s.buildings[bt][cfg.Subtype] = cfg
	}

	for key, b := range l.finishes {
		level, ok := types.ParseFinishLevel(key)
		if !ok {
			return nil, errors.Newf(errors.TypeConfig, "unknown finish_level %q", b.Level)
		}
		s.finishes[level] = FinishFactors{CostFactor: b.CostFactor, RevenueFactor: b.RevenueFactor}
	}

	for key, b := range l.classes {
		class, err := types.ParseProjectClass(key)
		if err != nil {
			return nil, errors.Config("project_class", err)
		}
		s.classes[class] = b.Multiplier
	}

	for key, b := range l.mixed {
		s.mixedUse[key] = MixedUseComponent{
			Name:              key,
			CostMultiplier:    b.CostMultiplier,
			RevenueMultiplier: b.RevenueMultiplier,
		}
	}

	for id, b := range l.scopes {
		p := &ScopeProfile{ID: id}
		for _, tb := range b.Trades {
			tp := TradeProfile{Trade: types.Trade(types.NormalizeKey(tb.Trade))}
			for _, ib := range tb.Items {
				tp.Items = append(tp.Items, ItemSpec{
					Key:          ib.Key,
					Label:        ib.Label,
					Unit:         strings.ToUpper(ib.Unit),
					QuantityRule: types.NormalizeKey(ib.QuantityRule),
					Params:       ib.Params,
					ShareOfTrade: ib.ShareOfTrade,
					OmitIfZero:   ib.OmitIfZero,
					Note:         ib.Note,
				})
			}
			for _, rb := range tb.Rescales {
				tp.Rescales = append(tp.Rescales, Rescale{Trigger: rb.Trigger, Targets: rb.Targets})
			}
			p.Trades = append(p.Trades, tp)
		}
		s.scopeProfiles[id] = p
	}

	for id, b := range l.tiles {
		p := &TileProfile{ID: id}
		for _, tb := range b.Tiles {
			p.Tiles = append(p.Tiles, Tile{
				ID:           tb.ID,
				Label:        tb.Label,
				RevenueDelta: tb.RevenueDelta,
				CostDelta:    tb.CostDelta,
			})
		}
		s.tileProfiles[id] = p
	}

	return s, nil
}

func convertBuilding(bt types.BuildingType, b buildingBlock, parent buildingTypeBlock) (*BuildingConfig, error) {
	cfg := &BuildingConfig{
		Type:               bt,
		Subtype:            types.NormalizeKey(b.Subtype),
		DisplayName:        b.DisplayName,
		BaseCostPerSF:      b.BaseCostPerSF,
		EquipmentCostPerSF: b.EquipmentCostPerSF,
		TypicalFloors:      b.TypicalFloors,
		Trades:             make(map[types.Trade]float64, len(b.Trades)),
		SoftCosts:          b.SoftCosts,
		SpecialFeatures:    normalizeKeys(b.SpecialFeatures),
		FeatureAliases:     make(map[string]string, len(b.FeatureAliases)),
		MarginPct:          b.MarginPct,
		ScopeItemsProfile:  b.ScopeItemsProfile,
		ScopeGenerator:     b.ScopeGenerator,
		TileProfile:        b.TileProfile,
		MinItemsPerTrade:   b.MinItemsPerTrade,
		MixedUseDefault:    normalizeKeys(b.MixedUseDefault),
		FlexFinishRates:    normalizeKeys(b.FlexFinishRates),
	}
	if cfg.TypicalFloors <= 0 {
		cfg.TypicalFloors = 1
	}
	if cfg.SoftCosts == nil {
		cfg.SoftCosts = parent.SoftCosts
	}
	for k, v := range b.Trades {
		cfg.Trades[types.Trade(types.NormalizeKey(k))] = v
	}
	for k, v := range b.FeatureAliases {
		cfg.FeatureAliases[types.NormalizeKey(k)] = types.NormalizeKey(v)
	}

	if len(b.FinishCostFactors) > 0 {
		cfg.FinishCostFactors = make(map[types.FinishLevel]float64, len(b.FinishCostFactors))
		for k, v := range b.FinishCostFactors {
			level, ok := types.ParseFinishLevel(k)
			if !ok {
				return nil, errors.Newf(errors.TypeConfig, "%s/%s: unknown finish level %q", bt, b.Subtype, k)
			}
			cfg.FinishCostFactors[level] = v
		}
	}
	if len(b.FinishMargins) > 0 {
		cfg.FinishMargins = make(map[types.FinishLevel]float64, len(b.FinishMargins))
		for k, v := range b.FinishMargins {
			level, ok := types.ParseFinishLevel(k)
			if !ok {
				return nil, errors.Newf(errors.TypeConfig, "%s/%s: unknown finish level %q", bt, b.Subtype, k)
			}
			cfg.FinishMargins[level] = v
		}
	}
	if len(b.DetailLabels) > 0 {
		cfg.DetailLabels = make(map[types.Trade][]string, len(b.DetailLabels))
		for k, v := range b.DetailLabels {
			cfg.DetailLabels[types.Trade(types.NormalizeKey(k))] = v
		}
	}
	if b.CostClamp != nil {
		cfg.CostClamp = &CostClamp{Min: b.CostClamp.Min, Max: b.CostClamp.Max}
	}
	if b.Financial != nil {
		cfg.Financial = convertFinancial(b.Financial)
	}

	owners := b.Ownership
	if len(owners) == 0 {
		owners = parent.Ownership
	}
	for _, o := range owners {
		cfg.Ownership = append(cfg.Ownership, Ownership{
			Type: types.OwnershipType(types.NormalizeKey(o.Type)),
			Terms: FinancingTerms{
				DebtRatio:         o.DebtRatio,
				EquityRatio:       o.EquityRatio,
				PhilanthropyRatio: o.PhilanthropyRatio,
				GrantsRatio:       o.GrantsRatio,
				DebtRate:          o.DebtRate,
				TargetDSCR:        o.TargetDSCR,
				TargetROI:         o.TargetROI,
				NOIPercentage:     o.NOIPercentage,
			},
		})
	}
	return cfg, nil
}

func convertFinancial(f *financialBlock) FinancialMetrics {
	return FinancialMetrics{
		PrimaryUnit:            f.PrimaryUnit,
		UnitsPerSF:             f.UnitsPerSF,
		RevenuePerUnit:         f.RevenuePerUnit,
		RevenuePerSF:           f.RevenuePerSF,
		OccupancyRate:          f.OccupancyRate,
		MarketRateType:         f.MarketRateType,
		OperatingMargin:        f.OperatingMargin,
		ExpenseRatios:          f.ExpenseRatios,
		VisitsPerDay:           f.VisitsPerDay,
		OperatingDays:          f.OperatingDays,
		ReimbursementPerVisit:  f.ReimbursementPerVisit,
		UncompensatedCareRatio: f.UncompensatedCareRatio,
		MonthlyRent:            f.MonthlyRent,
		ADR:                    f.ADR,
		ManagementFeeRatio:     f.ManagementFeeRatio,
		FFEReserveRatio:        f.FFEReserveRatio,
		BaseRentPerSF:          f.BaseRentPerSF,
		StabilizedOccupancy:    f.StabilizedOccupancy,
		VacancyCreditLoss:      f.VacancyCreditLoss,
		OpexPerSF:              f.OpexPerSF,
		TIPerSF:                f.TIPerSF,
		LeasingCommissionPct:   f.LeasingCommissionPct,
		LeaseTermYears:         f.LeaseTermYears,
	}
}

func normalizeKeys(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[types.NormalizeKey(k)] = v
	}
	return out
}
