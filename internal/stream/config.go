package stream

type StreamConfig struct {
	Provider       string `env:"STREAM_PROVIDER" envDefault:"redis"`
	QuestionStream string `env:"QUESTION_STREAM" envDefault:"docqa-questions"`
	AnswerStream   string `env:"ANSWER_STREAM" envDefault:"docqa-answers"`
	Group          string `env:"STREAM_GROUP" envDefault:"docqa-group"`
	ConsumerName   string `env:"STREAM_CONSUMER"`
}
