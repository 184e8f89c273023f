package iterationnode

func MarkIncomplete(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, ErrNilState
	}

	var missing []string
	if len(in.Activities) == 0 {
		missing = append(missing, "activities")
	}
	if len(in.Options) == 0 {
		missing = append(missing, "bookings")
	}

	return GraphOutput{
		Iteration:  in.Input.Iteration,
		Activities: in.Activities,
		Options:    in.Options,
		Incomplete: true,
		Missing:    missing,
		Failures:   in.Failures,
	}, nil
}
