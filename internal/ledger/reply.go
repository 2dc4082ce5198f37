package ledger

import (
	"errors"
	"fmt"

	"github.com/TalShar783/Taskmaster/internal/ledgererror"
)

// GenericFailure is the reply for errors with no better description.
const GenericFailure = "Error"

// Reply turns the outcome of any Recorder operation into the text sent back to
// the user. It never returns an empty string.
func Reply(res Result, err error) string {
	if err == nil {
		if res.Message == "" {
			return "Done."
		}
		return res.Message
	}

	var (
		partial    *ledgererror.PartialCompletionError
		notFound   *ledgererror.NotFoundError
		invalid    *ledgererror.InvalidRewardExpressionError
		validation *ledgererror.ValidationError
		external   *ledgererror.ExternalServiceError
	)
	switch {
	case errors.As(err, &partial):
		return fmt.Sprintf("%s But %s could not be removed from the bounty board, please remove it by hand.",
			res.Message, partial.Bounty)
	case errors.As(err, &notFound):
		return notFoundReply(notFound)
	case errors.As(err, &invalid):
		return fmt.Sprintf("Could not work out a reward from '%s'.", invalid.Expression)
	case errors.As(err, &validation):
		return fmt.Sprintf("Invalid %s '%s': %s.", validation.Field, validation.Value, validation.Reason)
	case errors.As(err, &external):
		return "Could not reach the spreadsheet, please try again later."
	}
	return GenericFailure
}

func notFoundReply(err *ledgererror.NotFoundError) string {
	switch err.Kind {
	case "task":
		return fmt.Sprintf("Could not find a task named %q.", err.Name)
	case "bounty":
		return fmt.Sprintf("Could not find a bounty named %q.", err.Name)
	case "user":
		return fmt.Sprintf("Could not find %s in the totals table.", err.Name)
	case "balance":
		return fmt.Sprintf("No balance recorded for %s.", err.Name)
	}
	return fmt.Sprintf("Could not find %s %q.", err.Kind, err.Name)
}
