package scope

import (
	"building-cost/core/confidence"
	"building-cost/core/types"
)

// Generator names referenced by scope_profile in the catalog
const (
	GeneratorIndustrialFlex = "industrial_flex"
	GeneratorColdStorage    = "cold_storage"
)

// defaultFlexOfficeShare applies when the caller gives no office area
const defaultFlexOfficeShare = 0.20

// split is one fixed-percentage line of a legacy template
type split struct {
	key   string
	label string
	unit  string
	pct   float64
	qty   func(ctx Context) Quantity
}

func sfQty(ctx Context) Quantity { return Quantity{Value: ctx.SquareFootage} }

func lumpSum(Context) Quantity { return Quantity{Value: 1} }

func countQty(sfPerUnit, min float64) func(Context) Quantity {
	return CountRule{SFPerUnit: sfPerUnit, Min: min}.Quantity
}

// render prices a split table. Percentages are normalised when they exceed 1.
func render(t types.Trade, amount float64, ctx Context, splits []split, source, rule string) []Item {
	sum := 0.0
	for _, s := range splits {
		sum += s.pct
	}
	scale := 1.0
	if sum > 1 {
		scale = 1 / sum
	}
	items := make([]Item, 0, len(splits))
	for _, s := range splits {
		q := s.qty(ctx)
		conf := confidence.NewTracker()
		conf.Apply(rule, "fixed-percentage template")
		if q.Derived {
			conf.Apply("derived_quantity", "quantity from square footage ratio")
		}
		items = append(items, newItem(s.key, s.label, t, q.Value, s.unit, amount*s.pct*scale, source, conf))
	}
	return items
}

func includeDocks(ctx Context) bool {
	return ctx.IncludeDocks == nil || *ctx.IncludeDocks
}

func dockQty(ctx Context) Quantity {
	return DockCountRule{PerSF: 10000, Min: 1}.Quantity(ctx)
}

// flexAreas returns office and warehouse area, defaulting the office share
func flexAreas(ctx Context) (office, warehouse float64, given bool) {
	office, given = ctx.OfficeArea()
	if !given {
		office = ctx.SquareFootage * defaultFlexOfficeShare
	}
	return office, ctx.SquareFootage - office, given
}

type industrialFlex struct{}

func (industrialFlex) Name() string { return GeneratorIndustrialFlex }

func (industrialFlex) Generate(t types.Trade, amount float64, ctx Context) ([]Item, bool) {
	office, warehouse, given := flexAreas(ctx)
	officeQty := func(Context) Quantity { return Quantity{Value: office, Overridden: given, Derived: !given} }
	warehouseQty := func(Context) Quantity { return Quantity{Value: warehouse, Overridden: given, Derived: !given} }

	var splits []split
	switch t {
	case types.TradeStructural:
		if includeDocks(ctx) {
			splits = []split{
				{"slab_on_grade", "Slab on Grade", "SF", 0.35, sfQty},
				{"tilt_up_shell", "Tilt-Up Shell", "SF", 0.30, sfQty},
				{"foundations", "Foundations", "SF", 0.25, sfQty},
				{"dock_doors", "Dock Doors & Levelers", "EA", 0.10, dockQty},
			}
		} else {
			splits = []split{
				{"slab_on_grade", "Slab on Grade", "SF", 0.40, sfQty},
				{"tilt_up_shell", "Tilt-Up Shell", "SF", 0.30, sfQty},
				{"foundations", "Foundations", "SF", 0.30, sfQty},
			}
		}
	case types.TradeMechanical:
		splits = []split{
			{"office_hvac", "Office HVAC", "SF", 0.45, officeQty},
			{"warehouse_heating", "Warehouse Unit Heaters & Ventilation", "SF", 0.40, warehouseQty},
			{"controls", "Controls", "LS", 0.15, lumpSum},
		}
	case types.TradeElectrical:
		splits = []split{
			{"service", "Service & Distribution", "LS", 0.25, lumpSum},
			{"office_lighting_power", "Office Lighting & Power", "SF", 0.35, officeQty},
			{"high_bay_lighting", "Warehouse High-Bay Lighting", "SF", 0.40, warehouseQty},
		}
	case types.TradePlumbing:
		splits = []split{
			{"restroom_groups", "Restroom Fixture Groups", "EA", 0.55, countQty(10000, 2)},
			{"domestic_water", "Domestic Water", "SF", 0.25, sfQty},
			{"sanitary", "Sanitary Waste", "SF", 0.20, sfQty},
		}
	case types.TradeFinishes:
		officeWeight := office * ctx.FlexFinishRates["office"]
		warehouseWeight := warehouse * ctx.FlexFinishRates["warehouse"]
		officePct := 0.5
		if w := officeWeight + warehouseWeight; w > 0 {
			officePct = officeWeight / w
		}
		splits = []split{
			{"office_finishes", "Office Finishes", "SF", officePct, officeQty},
			{"warehouse_finishes", "Warehouse Finishes", "SF", 1 - officePct, warehouseQty},
		}
	default:
		return nil, false
	}
	return render(t, amount, ctx, splits, SourceLegacy, "legacy_template"), true
}

type coldStorage struct{}

func (coldStorage) Name() string { return GeneratorColdStorage }

func (coldStorage) Generate(t types.Trade, amount float64, ctx Context) ([]Item, bool) {
	var splits []split
	switch t {
	case types.TradeStructural:
		splits = []split{
			{"insulated_slab", "Insulated Slab with Underfloor Heating", "SF", 0.40, sfQty},
			{"imp_panels", "Insulated Metal Wall & Roof Panels", "SF", 0.35, sfQty},
			{"foundations", "Foundations", "SF", 0.25, sfQty},
		}
	case types.TradeMechanical:
		if ctx.HasBlastFreezer {
			splits = []split{
				{"refrigeration_plant", "Refrigeration Plant", "LS", 0.45, lumpSum},
				{"evaporators", "Evaporator Coils", "EA", 0.25, countQty(2500, 4)},
				{"blast_freezer", "Blast Freezer Tunnel", "LS", 0.15, lumpSum},
				{"controls", "Refrigeration Controls", "LS", 0.15, lumpSum},
			}
		} else {
			splits = []split{
				{"refrigeration_plant", "Refrigeration Plant", "LS", 0.55, lumpSum},
				{"evaporators", "Evaporator Coils", "EA", 0.30, countQty(2500, 4)},
				{"controls", "Refrigeration Controls", "LS", 0.15, lumpSum},
			}
		}
	case types.TradeElectrical:
		splits = []split{
			{"service", "Service & Switchgear", "LS", 0.35, lumpSum},
			{"refrigeration_power", "Refrigeration Equipment Power", "SF", 0.40, sfQty},
			{"lighting", "Cold-Rated Lighting", "SF", 0.25, sfQty},
		}
	case types.TradePlumbing:
		splits = []split{
			{"floor_drains", "Floor Drains & Condensate", "SF", 0.50, sfQty},
			{"domestic_water", "Domestic Water", "SF", 0.30, sfQty},
			{"restroom_groups", "Restroom Fixture Groups", "EA", 0.20, countQty(20000, 1)},
		}
	case types.TradeFinishes:
		if includeDocks(ctx) {
			splits = []split{
				{"insulated_docks", "Insulated Dock Doors & Seals", "EA", 0.35, dockQty},
				{"cooler_doors", "Cooler & Freezer Doors", "EA", 0.40, countQty(5000, 2)},
				{"protective_finishes", "Protective Wall & Floor Finishes", "SF", 0.25, sfQty},
			}
		} else {
			splits = []split{
				{"cooler_doors", "Cooler & Freezer Doors", "EA", 0.60, countQty(5000, 2)},
				{"protective_finishes", "Protective Wall & Floor Finishes", "SF", 0.40, sfQty},
			}
		}
	default:
		return nil, false
	}
	return render(t, amount, ctx, splits, SourceLegacy, "legacy_template"), true
}

// genericSplits is the per-trade template for subtypes with neither a
// profile nor a generator
var genericSplits = map[types.Trade][]split{
	types.TradeStructural: {
		{"foundations", "Foundations", "SF", 0.25, sfQty},
		{"superstructure", "Superstructure", "SF", 0.45, sfQty},
		{"exterior_envelope", "Exterior Envelope", "SF", 0.30, sfQty},
	},
	types.TradeMechanical: {
		{"hvac_equipment", "HVAC Equipment", "SF", 0.40, sfQty},
		{"air_distribution", "Air Distribution", "SF", 0.35, sfQty},
		{"controls", "Controls", "LS", 0.25, lumpSum},
	},
	types.TradeElectrical: {
		{"service_distribution", "Service & Distribution", "LS", 0.30, lumpSum},
		{"lighting", "Lighting", "SF", 0.40, sfQty},
		{"power_devices", "Power & Devices", "SF", 0.30, sfQty},
	},
	types.TradePlumbing: {
		{"fixtures", "Plumbing Fixtures", "SF", 0.40, sfQty},
		{"domestic_water", "Domestic Water", "SF", 0.30, sfQty},
		{"waste_vent", "Waste & Vent", "SF", 0.30, sfQty},
	},
	types.TradeFinishes: {
		{"partitions", "Interior Partitions", "SF", 0.35, sfQty},
		{"flooring", "Flooring", "SF", 0.30, sfQty},
		{"ceilings", "Ceilings", "SF", 0.20, sfQty},
		{"paint", "Paint & Wall Finishes", "SF", 0.15, sfQty},
	},
}

// generic renders the generic template; unknown trades get a single lump sum
func generic(t types.Trade, amount float64, ctx Context) []Item {
	splits, ok := genericSplits[t]
	if !ok {
		splits = []split{{string(t), titleCase(string(t)) + " Work", "LS", 1.0, lumpSum}}
	}
	return render(t, amount, ctx, splits, SourceGeneric, "generic_template")
}

func titleCase(s string) string {
	out := []rune(s)
	upper := true
	for i, r := range out {
		if r == '_' {
			out[i] = ' '
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			out[i] = r - 'a' + 'A'
		}
		upper = false
	}
	return string(out)
}
