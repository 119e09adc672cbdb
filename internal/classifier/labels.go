package classifier

// Labels maps a prediction vector index to a class name. Index i of the
// table must match index i of the model output.
type Labels []string

// FormLabels is the table used by the server-rendered form.
var FormLabels = Labels{
	"cane", "cavallo", "elefante", "farfalla", "gallina",
	"gatto", "mucca", "pecora", "ragno", "scoiattolo",
}

// APILabels is the table used by the JSON API.
var APILabels = Labels{
	"dog", "horse", "elephant", "butterfly", "chicken",
	"cat", "cow", "sheep", "spider", "squirrel",
}
