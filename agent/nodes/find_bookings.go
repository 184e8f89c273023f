package iterationnode

import (
	"context"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

func FindBookings(
	ctx context.Context,
	in *GraphState,
	booking contractx.BookingHelper,
) (*GraphState, error) {
	if in == nil {
		return nil, ErrNilState
	}

	options, err := booking.FindOptions(ctx, contractx.BookingRequest{
		Requirements:   in.Input.Requirements,
		Iteration:      in.Input.Iteration,
		PreferCheapest: in.Input.PreferCheapest,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		in.fail(StageBooking, err)
		return in, nil
	}

	in.Options = options
	return in, nil
}
