package archtable_test

import (
	"fmt"

	"github.com/latticeware/archtable"
)

type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }

func Example() {
	registry := archtable.NewEntityRegistry()
	position := archtable.TypeOf[Position]()
	velocity := archtable.TypeOf[Velocity]()

	moving, _ := registry.CreateArchetype([]*archtable.ComponentType{position, velocity})
	e, _ := registry.Create(moving)
	_ = archtable.SetComponent(registry, e, Position{X: 1, Y: 1})
	_ = archtable.SetComponent(registry, e, Velocity{X: 0, Y: 2})

	predicate, _ := archtable.NewPredicateBuilder().Require(position, velocity).Build()
	query := archtable.NewEntityQuery(registry, predicate)

	for r := range query.Iterate() {
		positions, _ := archtable.GetComponents[Position](r.Table)
		velocities, _ := archtable.GetComponents[Velocity](r.Table)
		for row := 0; row < r.Count; row++ {
			positions[row].X += velocities[row].X
			positions[row].Y += velocities[row].Y
		}
	}

	got, _ := archtable.GetComponent[Position](registry, e)
	fmt.Println(got)
	// Output: {1 3}
}
