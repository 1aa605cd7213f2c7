package cli

import (
	"fmt"
	"time"

	"github.com/aretw0/scripter"
	"github.com/aretw0/scripter/pkg/adapters/memory"
	"github.com/aretw0/scripter/pkg/domain"
	"github.com/aretw0/scripter/pkg/registry"
	"github.com/aretw0/scripter/pkg/runner"
	"github.com/aretw0/scripter/pkg/tween"
)

// Builtins returns the scripts a server can start by name.
func Builtins(tree *memory.Tree) *registry.Registry {
	r := registry.NewRegistry()
	r.Register("text-nodes", TextNodes(tree))
	r.Register("wave", Wave(2*time.Second))
	r.Register("countdown", Countdown(5, time.Second))
	r.Register("blink", Blink(tree, "title", 6, 250*time.Millisecond))
	return r
}

// TextNodes prints the visible text nodes of the current page.
func TextNodes(tree *memory.Tree) runner.Script {
	return func(env *scripter.Env) error {
		tr, err := env.FindInPage(Filter(tree, "text", ""), domain.FindOptions{})
		if err != nil {
			return err
		}
		v, err := env.Await(tr)
		if err != nil {
			return err
		}
		for _, n := range v.([]domain.NodeRef) {
			info, err := tree.Info(n)
			if err != nil {
				continue
			}
			env.Print(n, info.Name)
		}
		return nil
	}
}

// Wave eases a value from 0 to 100 and back, printing it every 100ms.
func Wave(half time.Duration) runner.Script {
	return func(env *scripter.Env) error {
		var value float64
		id := env.SetInterval(func() { env.Print(fmt.Sprintf("%.1f", value)) }, 100*time.Millisecond)
		defer env.ClearInterval(id)

		set := func(v float64) error {
			value = v
			return nil
		}
		if _, err := env.Await(tween.Run(env, 0, 100, half, nil, set)); err != nil {
			return err
		}
		_, err := env.Await(tween.Run(env, 100, 0, half, nil, set))
		return err
	}
}

// Countdown prints n down to 1, one step per tick.
func Countdown(n int, tick time.Duration) runner.Script {
	return func(env *scripter.Env) error {
		for i := n; i > 0; i-- {
			env.Print(i)
			if _, err := env.Await(env.Timer(tick, nil)); err != nil {
				return err
			}
		}
		env.Print("liftoff")
		return nil
	}
}

// Blink toggles the visibility of a node count times.
func Blink(tree *memory.Tree, ref domain.NodeRef, count int, every time.Duration) runner.Script {
	return func(env *scripter.Env) error {
		hidden, err := tree.IsHidden(ref)
		if err != nil {
			return err
		}
		defer func() {
			_ = tree.SetHidden(ref, hidden)
		}()
		for i := 0; i < count; i++ {
			if err := tree.SetHidden(ref, i%2 == 0); err != nil {
				return err
			}
			if _, err := env.Await(env.Timer(every, nil)); err != nil {
				return err
			}
		}
		return nil
	}
}
