package normalizer

import (
	"fmt"

	"github.com/electionwatch/candidate-dashboard/internal/models"
)

// DecodeComments tags a stored comments value with its shape. Values that are
// neither a string, an object nor a list decode as CommentsNone.
func DecodeComments(v interface{}) models.Comments {
	switch c := v.(type) {
	case string:
		return models.Comments{Kind: models.CommentsText, Text: c}
	case map[string]interface{}:
		return models.Comments{Kind: models.CommentsObject, Object: decodeCommentObject(c)}
	case []interface{}:
		list := make([]models.CommentObject, 0, len(c))
		for _, item := range c {
			obj, ok := item.(map[string]interface{})
			if !ok {
				// keeps the element so positions line up; it has no body
				list = append(list, models.CommentObject{})
				continue
			}
			list = append(list, decodeCommentObject(obj))
		}
		return models.Comments{Kind: models.CommentsList, List: list}
	default:
		return models.Comments{Kind: models.CommentsNone}
	}
}

func decodeCommentObject(obj map[string]interface{}) models.CommentObject {
	body, ok := obj[models.FieldCommentBody].(string)
	if !ok {
		return models.CommentObject{}
	}
	return models.CommentObject{Body: &body}
}

// FlattenComments returns the comment bodies of c in stored order. Objects
// without a body contribute nothing.
func FlattenComments(c models.Comments) []string {
	out := []string{}

	switch c.Kind {
	case models.CommentsNone:
	case models.CommentsText:
		out = append(out, c.Text)
	case models.CommentsObject:
		if c.Object.Body != nil {
			out = append(out, *c.Object.Body)
		}
	case models.CommentsList:
		for _, obj := range c.List {
			if obj.Body != nil {
				out = append(out, *obj.Body)
			}
		}
	default:
		panic(fmt.Sprintf("normalizer: unknown comments kind %d", c.Kind))
	}

	return out
}
