package config

type WorkerKeyStruct struct {
	WarmResultsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	WarmResultsQueue: "warm_results_queue",
}
