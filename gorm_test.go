package rql

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&Product{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	for _, p := range storeProducts() {
		p := p
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("Failed to create product: %v", err)
		}
	}
	return db
}

// storeProducts extends products with names that differ only by case or that
// hold pattern metacharacters.
func storeProducts() []Product {
	return append(products(),
		Product{ID: 7, Code: 7, Name: "widget mini", Status: StatusClosed},
		Product{ID: 8, Code: 8, Name: "50% off", Status: StatusClosed},
		Product{ID: 9, Code: 9, Name: "a_b", Status: StatusClosed},
		Product{ID: 10, Code: 10, Name: "GIZMO", Status: StatusClosed},
		Product{ID: 11, Code: 11, Name: "odd [x]*?", Status: StatusClosed},
	)
}

func TestApplyMatchesInMemory(t *testing.T) {
	db := openTestDB(t)

	tests := []struct {
		query string
		want  []int
	}{
		{query: "()"},
		{query: "(in(Code,3,4,5))"},
		{query: `(startswith(Name,"Wid"))`, want: []int{2, 3, 4}},
		{query: `(contains(Name,"get"),ne(Code,2))`, want: []int{3, 4, 4, 7}},
		{query: "(between(Code,2,4),eq(Active,true))"},
		{query: "(nin(Status,Closed,Shipped))"},
		{query: "(gt(Status,Open))"},
		{query: `(startswith(Name,"w"))`, want: []int{7}},
		{query: `(startswith(Name,"g"))`, want: []int{}},
		{query: `(contains(Name,"GIZ"))`, want: []int{10}},
		{query: `(contains(Name,"JO"))`, want: []int{}},
		{query: `(contains(Name,"0%"))`, want: []int{8}},
		{query: `(contains(Name,"_"))`, want: []int{9}},
		{query: `(startswith(Name,"a_"))`, want: []int{9}},
		{query: `(contains(Name,"%"))`, want: []int{8}},
		{query: `(contains(Name,"[x]*?"))`, want: []int{11}},
		{query: `(contains(Name,"*"))`, want: []int{11}},
		{query: `(contains(Name,"?"))`, want: []int{11}},
	}

	for _, tt := range tests {
		q := tt.query
		t.Run(q, func(t *testing.T) {
			b := For(&Product{}).FromRql(q)
			if err := b.Err(); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			var fromDB []Product
			if err := Apply(db.Model(&Product{}).Order("id"), b).Find(&fromDB).Error; err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			inMemory, err := Filter(b, storeProducts())
			if err != nil {
				t.Fatalf("Filter failed: %v", err)
			}

			got, want := codes(fromDB), codes(inMemory)
			if tt.want != nil && !equalInts(want, tt.want) {
				t.Fatalf("Expected in-memory codes %v, got %v", tt.want, want)
			}
			if len(got) != len(want) {
				t.Fatalf("Expected codes %v, got %v", want, got)
			}
			for i := range want {
				if got[i] != want[i] {
					t.Errorf("Expected codes %v, got %v", want, got)
					break
				}
			}
		})
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyLabelsMatchInMemory(t *testing.T) {
	db := openTestDB(t)
	if err := db.AutoMigrate(&Ticket{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	for _, tk := range tickets() {
		tk := tk
		if err := db.Create(&tk).Error; err != nil {
			t.Fatalf("Failed to create ticket: %v", err)
		}
	}

	queries := []string{
		"(eq(Color,green))",
		"(ne(Color,red))",
		"(in(Color,red,blue))",
		"(nin(Color,blue))",
		"(gte(Priority,Medium))",
		"(between(Priority,Low,Medium))",
		`(ne(Owner,"bob"))`,
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			b := For(Ticket{}).FromRql(q)
			var fromDB []Ticket
			if err := Apply(db.Model(&Ticket{}).Order("id"), b).Find(&fromDB).Error; err != nil {
				t.Fatalf("Query failed: %v", err)
			}
			inMemory, err := Filter(b, tickets())
			if err != nil {
				t.Fatalf("Filter failed: %v", err)
			}
			if got, want := ticketIDs(fromDB), ticketIDs(inMemory); !equalInts(got, want) {
				t.Errorf("Expected ids %v, got %v", want, got)
			}
		})
	}

	var out []Ticket
	err := Apply(db.Model(&Ticket{}), For(Ticket{}).FromRql("(lt(Color,green))")).Find(&out).Error
	if KindOf(err) != KindCoercion {
		t.Errorf("Expected coercion error for ordering on labels, got %v", err)
	}
}

func TestApplyProjection(t *testing.T) {
	db := openTestDB(t)

	b := For(&Product{}).Where("Code").Equals(3).Project("Name")
	var out []Product
	if err := Apply(db.Model(&Product{}), b).Find(&out).Error; err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(out))
	}
	if out[0].Name != "Widget Pro" || out[0].Code != 0 {
		t.Errorf("Expected only Name to be selected, got %+v", out[0])
	}
}

func TestApplyPropagatesBuilderError(t *testing.T) {
	db := openTestDB(t)

	b := For(&Product{}).FromRql("(eq(Code,abc))")
	var out []Product
	err := Apply(db.Model(&Product{}), b).Find(&out).Error
	if err == nil {
		t.Fatal("Expected an error")
	}
	if KindOf(err) != KindCoercion {
		t.Errorf("Expected coercion error, got %v", err)
	}
}

func TestInstrumentDB(t *testing.T) {
	db := openTestDB(t)

	engine := New(WithDBTracing())
	if err := engine.InstrumentDB(db); err != nil {
		t.Fatalf("InstrumentDB failed: %v", err)
	}

	var out []Product
	if err := Apply(db.Model(&Product{}), engine.For(&Product{}).FromRql("(eq(Active,true))")).Find(&out).Error; err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(out) != 4 {
		t.Errorf("Expected 4 active products, got %d", len(out))
	}
}

type renamedDialector struct {
	gorm.Dialector
}

func (renamedDialector) Name() string { return "cockroach" }

func TestApplyWarnsOnUnknownDialect(t *testing.T) {
	db, err := gorm.Open(renamedDialector{sqlite.Open(":memory:")}, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&Product{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if err := db.Create(&Product{ID: 1, Code: 3, Name: "Widget"}).Error; err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}

	var buf bytes.Buffer
	engine := New(WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	var out []Product
	if err := Apply(db.Model(&Product{}), engine.For(&Product{}).FromRql("(eq(Code,3))")).Find(&out).Error; err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("Expected 1 product, got %d", len(out))
	}
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "dialect=cockroach") {
		t.Errorf("Expected a warning naming the dialect, got %q", buf.String())
	}
}
