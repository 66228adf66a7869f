// Copyright 2025 The Chatflow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package websearch runs the live web search pipeline: the user's question is
// rewritten into search keywords by the LLM, sent to a search provider, and
// the raw hits are re-ranked locally against those keywords. The ranked hits
// themselves are the answer; there is no LLM summarization pass.
package websearch
