package manager

type tokenKind int

const (
	kindRem     tokenKind = iota // base * multiplier, in rem
	kindPx                       // base * multiplier, in px
	kindNumber                   // multiplier as is, unitless
	kindFixedPx                  // multiplier as is, in px
)

type token struct {
	name  string
	mult  float64
	kind  tokenKind
	dense bool // follows preset density
}

func rem(name string, mult float64) token   { return token{name: name, mult: mult} }
func space(name string, mult float64) token { return token{name: name, mult: mult, dense: true} }

// tokens is the multiplier table every generated sheet is derived from.
// Order here is the order of declarations in the sheet.
var tokens = []token{
	{name: "size-base", mult: 1, kind: kindPx},
	{name: "size-root", mult: 1, kind: kindRem},

	rem("font-size-3xs", 0.5),
	rem("font-size-2xs", 0.625),
	rem("font-size-xs", 0.75),
	rem("font-size-sm", 0.875),
	rem("font-size-base", 1),
	rem("font-size-md", 1.125),
	rem("font-size-lg", 1.25),
	rem("font-size-xl", 1.5),
	rem("font-size-2xl", 1.875),
	rem("font-size-3xl", 2.25),
	rem("font-size-4xl", 3),
	rem("font-size-5xl", 3.75),
	rem("font-size-6xl", 4.5),
	rem("font-size-7xl", 6),
	rem("font-size-8xl", 8),

	space("spacing-0", 0),
	space("spacing-px", 0.0625),
	space("spacing-0-5", 0.125),
	space("spacing-1", 0.25),
	space("spacing-1-5", 0.375),
	space("spacing-2", 0.5),
	space("spacing-2-5", 0.625),
	space("spacing-3", 0.75),
	space("spacing-3-5", 0.875),
	space("spacing-4", 1),
	space("spacing-5", 1.25),
	space("spacing-6", 1.5),
	space("spacing-7", 1.75),
	space("spacing-8", 2),
	space("spacing-9", 2.25),
	space("spacing-10", 2.5),
	space("spacing-11", 2.75),
	space("spacing-12", 3),
	space("spacing-14", 3.5),
	space("spacing-16", 4),
	space("spacing-20", 5),
	space("spacing-24", 6),
	space("spacing-28", 7),
	space("spacing-32", 8),
	space("spacing-36", 9),
	space("spacing-40", 10),
	space("spacing-44", 11),
	space("spacing-48", 12),
	space("spacing-52", 13),
	space("spacing-56", 14),
	space("spacing-60", 15),
	space("spacing-64", 16),
	space("spacing-72", 18),
	space("spacing-80", 20),
	space("spacing-96", 24),

	{name: "line-height-none", mult: 1, kind: kindNumber},
	{name: "line-height-tight", mult: 1.25, kind: kindNumber},
	{name: "line-height-snug", mult: 1.375, kind: kindNumber},
	{name: "line-height-normal", mult: 1.5, kind: kindNumber},
	{name: "line-height-relaxed", mult: 1.625, kind: kindNumber},
	{name: "line-height-loose", mult: 2, kind: kindNumber},
	rem("line-height-3", 0.75),
	rem("line-height-4", 1),
	rem("line-height-5", 1.25),
	rem("line-height-6", 1.5),
	rem("line-height-7", 1.75),
	rem("line-height-8", 2),
	rem("line-height-9", 2.25),
	rem("line-height-10", 2.5),

	rem("radius-none", 0),
	rem("radius-sm", 0.125),
	rem("radius-base", 0.25),
	rem("radius-md", 0.375),
	rem("radius-lg", 0.5),
	rem("radius-xl", 0.75),
	rem("radius-2xl", 1),
	rem("radius-3xl", 1.5),
	{name: "radius-full", mult: 9999, kind: kindFixedPx},

	rem("border-width-0", 0),
	rem("border-width-1", 0.0625),
	rem("border-width-2", 0.125),
	rem("border-width-4", 0.25),
	rem("border-width-8", 0.5),

	rem("icon-xs", 0.75),
	rem("icon-sm", 1),
	rem("icon-md", 1.25),
	rem("icon-lg", 1.5),
	rem("icon-xl", 2),
	rem("icon-2xl", 2.5),
	rem("icon-3xl", 3),

	rem("container-xs", 20),
	rem("container-sm", 24),
	rem("container-md", 28),
	rem("container-lg", 32),
	rem("container-xl", 36),
	rem("container-2xl", 42),
	rem("container-3xl", 48),
	rem("container-4xl", 56),
	rem("container-5xl", 64),
	rem("container-6xl", 72),
	rem("container-7xl", 80),

	{name: "breakpoint-sm", mult: 40, kind: kindPx},
	{name: "breakpoint-md", mult: 48, kind: kindPx},
	{name: "breakpoint-lg", mult: 64, kind: kindPx},
	{name: "breakpoint-xl", mult: 80, kind: kindPx},
	{name: "breakpoint-2xl", mult: 96, kind: kindPx},

	rem("control-height-xs", 1.5),
	rem("control-height-sm", 2),
	rem("control-height-md", 2.5),
	rem("control-height-lg", 3),
	rem("control-height-xl", 3.5),

	space("gap-xs", 0.25),
	space("gap-sm", 0.5),
	space("gap-md", 1),
	space("gap-lg", 1.5),
	space("gap-xl", 2),
	space("gap-2xl", 3),

	space("button-padding-x-sm", 0.75),
	space("button-padding-x-md", 1),
	space("button-padding-x-lg", 1.5),
	space("button-padding-y-sm", 0.375),
	space("button-padding-y-md", 0.5),
	space("button-padding-y-lg", 0.75),

	space("input-padding-x-sm", 0.5),
	space("input-padding-x-md", 0.75),
	space("input-padding-x-lg", 1),
	space("input-padding-y-sm", 0.25),
	space("input-padding-y-md", 0.5),
	space("input-padding-y-lg", 0.75),

	rem("heading-h1", 2.25),
	rem("heading-h2", 1.875),
	rem("heading-h3", 1.5),
	rem("heading-h4", 1.25),
	rem("heading-h5", 1.125),
	rem("heading-h6", 1),

	rem("touch-target-min", 2.75),
	rem("focus-ring-width", 0.125),
	rem("focus-ring-offset", 0.125),
	rem("scrollbar-width", 0.5),

	rem("avatar-xs", 1.5),
	rem("avatar-sm", 2),
	rem("avatar-md", 2.5),
	rem("avatar-lg", 3),
	rem("avatar-xl", 4),

	space("card-padding-sm", 1),
	space("card-padding-md", 1.5),
	space("card-padding-lg", 2),

	rem("modal-width-sm", 24),
	rem("modal-width-md", 32),
	rem("modal-width-lg", 48),

	rem("sidebar-width", 16),
	rem("header-height", 4),
	rem("footer-height", 3),
}

// TokenNames returns names of all generated custom properties, with the
// leading "--", in declaration order.
func TokenNames() []string {
	names := make([]string, 0, len(tokens))
	for _, t := range tokens {
		names = append(names, "--"+t.name)
	}
	return names
}
