package cython

import (
	"github.com/sirupsen/logrus"
)

type pending struct {
	file     string
	referrer string
}

// SelectEmission computes which files must be generated to satisfy a request
// for the named files, ordered so that every file comes after the files it
// imports from. Each file appears once.
//
// The selection works from a stack seeded with the requested names. A file
// whose dependencies are not all committed yet is pushed back, followed by
// the missing dependencies, and revisited once they are done. A dependency
// found waiting on the stack while one of its own dependencies is processed
// indicates a cycle, reported as a *CycleError.
func SelectEmission(files []*File, requested []string, log logrus.FieldLogger) ([]*File, error) {
	if log == nil {
		log = discardLogger()
	}
	byName := make(map[string]*File, len(files))
	for _, f := range files {
		byName[f.Name] = f
	}

	committed := map[ModuleIdentity]struct{}{}
	waiting := map[string]bool{}
	pushedBy := map[string]string{}
	var result []*File

	stack := make([]pending, 0, len(requested))
	for i := len(requested) - 1; i >= 0; i-- {
		stack = append(stack, pending{file: requested[i]})
	}
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		f, ok := byName[next.file]
		if !ok {
			return nil, errMissingFile(next.file, next.referrer)
		}
		delete(waiting, f.Name)
		if allCommitted(f, committed) {
			continue
		}

		var unmet []string
		seen := map[string]struct{}{}
		for _, dep := range f.Dependencies {
			if _, ok := committed[dep.Module]; ok {
				continue
			}
			if _, ok := seen[dep.File]; ok {
				continue
			}
			seen[dep.File] = struct{}{}
			unmet = append(unmet, dep.File)
		}

		if len(unmet) == 0 {
			if _, ok := committed[f.Module]; !ok {
				result = append(result, f)
			}
			for _, id := range f.Identities() {
				committed[id] = struct{}{}
			}
			log.WithField("file", f.Name).Debug("committed file for emission")
			continue
		}

		for _, dep := range unmet {
			if waiting[dep] {
				return nil, &CycleError{Files: cycleChain(pushedBy, f.Name, dep)}
			}
		}
		log.WithFields(logrus.Fields{
			"file":    f.Name,
			"pending": unmet,
		}).Debug("requeueing file until its dependencies are committed")
		waiting[f.Name] = true
		stack = append(stack, pending{file: f.Name, referrer: next.referrer})
		for _, dep := range unmet {
			pushedBy[dep] = f.Name
			stack = append(stack, pending{file: dep, referrer: f.Name})
		}
	}
	return result, nil
}

func allCommitted(f *File, committed map[ModuleIdentity]struct{}) bool {
	for _, id := range f.Identities() {
		if _, ok := committed[id]; !ok {
			return false
		}
	}
	return true
}

// cycleChain reconstructs the import path from dep down to from, using the
// record of which file pushed which dependency, and closes it with dep.
func cycleChain(pushedBy map[string]string, from, dep string) []string {
	chain := []string{from}
	seen := map[string]bool{from: true}
	for cur := from; cur != dep; {
		parent, ok := pushedBy[cur]
		if !ok || seen[parent] {
			break
		}
		seen[parent] = true
		chain = append(chain, parent)
		cur = parent
	}
	if chain[len(chain)-1] != dep {
		chain = append(chain, dep)
	}
	// chain runs from the importer towards the importee's importer; present
	// it in import order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return append(chain, dep)
}
