package scraper

import (
	"fmt"
	"iter"
	"strconv"

	"goodminton/courts"
	"goodminton/jsquery"
)

// Instants yields the integer arguments of every `new <constructor>(...)` call
// under root, in document order. Non-numeric arguments are skipped. A numeric
// argument that is not a base-10 integer ends the sequence with a
// FormatMismatchError.
func Instants(root jsquery.Node, constructor string) iter.Seq2[[]int, error] {
	return func(yield func([]int, error) bool) {
		for call := range root.Find(jsquery.NewCallNamed(constructor)) {
			args, err := integerArgs(call)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(args, nil) {
				return
			}
		}
	}
}

func integerArgs(call jsquery.Node) ([]int, error) {
	argList := call.Child(jsquery.FieldArguments)
	if argList == nil {
		return []int{}, nil
	}
	args := make([]int, 0, 6)
	for _, a := range argList.Elements() {
		if a.Kind() != jsquery.KindNumber {
			continue
		}
		v, err := strconv.Atoi(a.Text())
		if err != nil {
			return nil, courts.FormatMismatch(fmt.Sprintf("argument %q is not an integer", a.Text()), err)
		}
		args = append(args, v)
	}
	return args, nil
}
