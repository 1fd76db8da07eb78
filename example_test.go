package kernelscore_test

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/kernelscore"
	"github.com/hupe1980/kernelscore/dictionary"
	"github.com/hupe1980/kernelscore/feature"
	"github.com/hupe1980/kernelscore/kernel"
)

// Example demonstrates scoring, an online update and a save/read round trip.
func Example() {
	dict := dictionary.New()
	dict.Add("f", "a")
	dict.Add("f", "b")

	sv, err := kernelscore.NewSupportVector(kernel.Linear, kernel.Params{Point: []float32{1, 0}}, 2)
	if err != nil {
		log.Fatal(err)
	}

	m := kernelscore.New().SetDictionary(dict).AddSupportVector(sv)

	fv := feature.New().Set("f", "a", 1)
	fmt.Println(m.ScoreItem(fv))

	m.OnlineUpdate(1.0, 0.5, fv)
	fmt.Println(m.ScoreItem(fv))

	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		log.Fatal(err)
	}

	loaded, err := kernelscore.Read(&buf)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(loaded.ScoreItem(fv))
	// Output:
	// 2
	// 1.5
	// 1.5
}

// ExampleGuarded_ScoreBatch scores several inputs against one model state.
func ExampleGuarded_ScoreBatch() {
	dict := dictionary.New()
	dict.Add("loc", "x")

	sv, _ := kernelscore.NewSupportVector(kernel.Polynomial, kernel.Params{
		Point:  []float32{1},
		Scale:  1,
		Coef0:  1,
		Degree: 2,
	}, 1)

	g := kernelscore.NewGuarded(kernelscore.New().SetDictionary(dict).AddSupportVector(sv))

	scores, err := g.ScoreBatch(context.Background(), []feature.Sparse{
		feature.New().Set("loc", "x", 0),
		feature.New().Set("loc", "x", 1),
		feature.New().Set("loc", "x", 2),
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(scores)
	// Output: [1 4 9]
}
